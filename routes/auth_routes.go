package routes

import (
	"net/http"

	"hostelswap_server/controllers"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

func RegisterAuthRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, auth *services.AuthService, users *services.UserService) {
	controller := &controllers.AuthController{Auth: auth, Users: users}

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", controller.Register).Methods("POST")
	authRouter.HandleFunc("/login", controller.Login).Methods("POST")
	authRouter.Handle("/me", requireAuth(http.HandlerFunc(controller.Me))).Methods("GET")
}
