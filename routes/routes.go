package routes

import (
	"hostelswap_server/controllers"
	"hostelswap_server/middleware"
	"hostelswap_server/services"

	"github.com/gorilla/mux"
)

// Services bundles everything the HTTP layer needs
type Services struct {
	Tokens        middleware.TokenParser
	Auth          *services.AuthService
	Users         *services.UserService
	Listings      *services.ListingService
	Suggestions   *services.SuggestionService
	Uploads       *services.UploadService
	MatchRequests *services.MatchRequestService
	Messages      *services.MessageService
	CommonChat    *services.CommonChatService
	Events        *services.EventService
	Courses       *services.CourseService
	Friends       *services.FriendService
	Sync          *services.SyncService
	Presence      controllers.Presence

	// UploadDir is served under /uploads/ when uploads are stored on local disk
	UploadDir string
}

// RegisterRoutes sets up the routes for the application
func RegisterRoutes(r *mux.Router, svc Services) {
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/privacy-policy", controllers.PrivacyPolicyHandler).Methods("GET")

	requireAuth := middleware.RequireAuth(svc.Tokens)

	RegisterAuthRoutes(r, requireAuth, svc.Auth, svc.Users)
	RegisterUserRoutes(r, requireAuth, svc.Users, svc.Presence)
	RegisterListingRoutes(r, requireAuth, svc.Listings, svc.Suggestions, svc.Uploads)
	RegisterMatchRequestRoutes(r, requireAuth, svc.MatchRequests)
	RegisterMessageRoutes(r, requireAuth, svc.Messages)
	RegisterCommonChatRoutes(r, requireAuth, svc.CommonChat)
	RegisterEventRoutes(r, requireAuth, svc.Events)
	RegisterCourseRoutes(r, requireAuth, svc.Courses)
	RegisterFriendRoutes(r, requireAuth, svc.Friends)
	RegisterSyncRoutes(r, requireAuth, svc.Sync)
	RegisterUploadRoutes(r, requireAuth, svc.Uploads, svc.UploadDir)
}
