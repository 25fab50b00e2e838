package routes

import (
	"net/http"

	"hostelswap_server/controllers"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

func RegisterEventRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, events *services.EventService) {
	controller := &controllers.EventController{Events: events}

	eventRouter := r.PathPrefix("/api/events").Subrouter()
	eventRouter.Use(requireAuth)
	eventRouter.HandleFunc("", controller.Create).Methods("POST")
	eventRouter.HandleFunc("", controller.List).Methods("GET")
	eventRouter.HandleFunc("/{id}", controller.Get).Methods("GET")
	eventRouter.HandleFunc("/{id}", controller.Delete).Methods("DELETE")
	eventRouter.HandleFunc("/{id}/join", controller.Join).Methods("POST")
	eventRouter.HandleFunc("/{id}/join", controller.Leave).Methods("DELETE")
}

func RegisterCourseRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, courses *services.CourseService) {
	controller := &controllers.CourseController{Courses: courses}

	courseRouter := r.PathPrefix("/api/courses").Subrouter()
	courseRouter.Use(requireAuth)
	courseRouter.HandleFunc("", controller.Create).Methods("POST")
	courseRouter.HandleFunc("", controller.List).Methods("GET")
	courseRouter.HandleFunc("/mine", controller.Mine).Methods("GET")
	courseRouter.HandleFunc("/{code}/enroll", controller.Enroll).Methods("POST")
	courseRouter.HandleFunc("/{code}/enroll", controller.Unenroll).Methods("DELETE")
	courseRouter.HandleFunc("/{code}/members", controller.Members).Methods("GET")
}

func RegisterFriendRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, friends *services.FriendService) {
	controller := &controllers.FriendController{Friends: friends}

	friendRouter := r.PathPrefix("/api/friends").Subrouter()
	friendRouter.Use(requireAuth)
	friendRouter.HandleFunc("", controller.List).Methods("GET")
	friendRouter.HandleFunc("/requests", controller.SendRequest).Methods("POST")
	friendRouter.HandleFunc("/requests", controller.Requests).Methods("GET")
	friendRouter.HandleFunc("/requests/{userId}", controller.Respond).Methods("PUT")
	friendRouter.HandleFunc("/{userId}", controller.Remove).Methods("DELETE")
}

func RegisterSyncRoutes(r *mux.Router, requireAuth mux.MiddlewareFunc, sync *services.SyncService) {
	controller := &controllers.SyncController{Sync: sync}

	r.Handle("/api/sync", requireAuth(http.HandlerFunc(controller.Since))).Methods("GET")
}
