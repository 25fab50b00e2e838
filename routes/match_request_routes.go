package routes

import (
	"hostelswap_server/controllers"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

func RegisterMatchRequestRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, requests *services.MatchRequestService) {
	controller := &controllers.MatchRequestController{Requests: requests}

	matchRouter := r.PathPrefix("/api/match-requests").Subrouter()
	matchRouter.Use(requireAuth)
	matchRouter.HandleFunc("", controller.Create).Methods("POST")
	matchRouter.HandleFunc("/sent", controller.Sent).Methods("GET")
	matchRouter.HandleFunc("/received", controller.Received).Methods("GET")
	matchRouter.HandleFunc("/listing/{listingId}", controller.ForListing).Methods("GET")
	matchRouter.HandleFunc("/{id}", controller.Get).Methods("GET")
	matchRouter.HandleFunc("/{id}/respond", controller.Respond).Methods("PUT")
	matchRouter.HandleFunc("/{id}/approve", controller.Approve).Methods("PUT")
	matchRouter.HandleFunc("/{id}/complete", controller.Complete).Methods("POST")
	matchRouter.HandleFunc("/{id}/schedule", controller.Schedule).Methods("PUT")
}
