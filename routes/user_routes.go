package routes

import (
	"hostelswap_server/controllers"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

func RegisterUserRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, users *services.UserService, presence controllers.Presence) {
	controller := &controllers.UserController{Users: users, Presence: presence}

	userRouter := r.PathPrefix("/api/users").Subrouter()
	userRouter.Use(requireAuth)
	userRouter.HandleFunc("", controller.Search).Methods("GET")
	userRouter.HandleFunc("/me", controller.GetMe).Methods("GET")
	userRouter.HandleFunc("/me", controller.UpdateMe).Methods("PUT")
	userRouter.HandleFunc("/online", controller.Online).Methods("GET")
	userRouter.HandleFunc("/{id}", controller.GetUser).Methods("GET")
}
