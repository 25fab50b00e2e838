package routes

import (
	"hostelswap_server/controllers"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

func RegisterMessageRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, messages *services.MessageService) {
	controller := &controllers.MessageController{Messages: messages}

	messageRouter := r.PathPrefix("/api/messages").Subrouter()
	messageRouter.Use(requireAuth)
	messageRouter.HandleFunc("", controller.Send).Methods("POST")
	messageRouter.HandleFunc("/conversations", controller.Conversations).Methods("GET")
	messageRouter.HandleFunc("/{userId}", controller.Conversation).Methods("GET")
	messageRouter.HandleFunc("/{userId}/read", controller.MarkRead).Methods("PUT")
}

func RegisterCommonChatRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, chat *services.CommonChatService) {
	controller := &controllers.CommonChatController{Chat: chat}

	chatRouter := r.PathPrefix("/api/common-chat").Subrouter()
	chatRouter.Use(requireAuth)
	chatRouter.HandleFunc("", controller.Post).Methods("POST")
	chatRouter.HandleFunc("", controller.Recent).Methods("GET")
}
