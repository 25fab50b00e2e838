package routes

import (
	"net/http"

	"hostelswap_server/controllers"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

func RegisterUploadRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, uploads *services.UploadService, uploadDir string) {
	controller := &controllers.UploadController{Uploads: uploads}

	if uploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	}

	uploadRouter := r.PathPrefix("/api/uploads").Subrouter()
	uploadRouter.Use(requireAuth)
	uploadRouter.HandleFunc("/profile-picture", controller.PresignProfilePicture).Methods("POST")
}
