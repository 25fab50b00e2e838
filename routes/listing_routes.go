package routes

import (
	"hostelswap_server/controllers"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

func RegisterListingRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, listings *services.ListingService,
	suggestions *services.SuggestionService, uploads *services.UploadService) {
	controller := &controllers.ListingController{Listings: listings, Suggestions: suggestions, Uploads: uploads}

	listingRouter := r.PathPrefix("/api/listings").Subrouter()
	listingRouter.Use(requireAuth)
	listingRouter.HandleFunc("", controller.Create).Methods("POST")
	listingRouter.HandleFunc("", controller.List).Methods("GET")
	// static segments before /{id}
	listingRouter.HandleFunc("/mine", controller.Mine).Methods("GET")
	listingRouter.HandleFunc("/suggestions", controller.Suggest).Methods("GET")
	listingRouter.HandleFunc("/{id}", controller.Get).Methods("GET")
	listingRouter.HandleFunc("/{id}", controller.Update).Methods("PUT")
	listingRouter.HandleFunc("/{id}", controller.Delete).Methods("DELETE")
	listingRouter.HandleFunc("/{id}/interest", controller.ExpressInterest).Methods("POST")
	listingRouter.HandleFunc("/{id}/interest", controller.WithdrawInterest).Methods("DELETE")
	listingRouter.HandleFunc("/{id}/proof", controller.UploadProof).Methods("POST")
	listingRouter.HandleFunc("/{id}/proof", controller.ProofURL).Methods("GET")
}
