package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hostelswap_server/config"
	"hostelswap_server/middleware"
	"hostelswap_server/routes"
	"hostelswap_server/services"
	"hostelswap_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient, err := services.InitializeDynamoDBClient(ctx, cfg.Dynamo.Region, cfg.Dynamo.Endpoint)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	dynamoService := &services.DynamoService{Client: dynamoClient, TablePrefix: cfg.Dynamo.TablePrefix}
	log.Println("✅ DynamoDB client initialized.")

	fileStorage, uploadDir := newFileStorage(ctx, cfg)

	// Real-time hub; services notify through it
	hub := socket.NewHub()
	if cfg.Redis.URL != "" {
		relay, err := socket.NewRedisRelay(ctx, cfg.Redis.URL, cfg.Redis.Channel)
		if err != nil {
			log.Printf("⚠️ Redis relay disabled: %v", err)
		} else {
			defer relay.Close()
			hub.SetRelay(relay)
			go relay.Run(ctx, hub.Deliver)
		}
	}

	// Stores
	userStore := &services.DynamoUserStore{Dynamo: dynamoService}
	listingStore := &services.DynamoListingStore{Dynamo: dynamoService}
	requestStore := &services.DynamoMatchRequestStore{Dynamo: dynamoService}
	messageStore := &services.DynamoMessageStore{Dynamo: dynamoService}
	friendStore := &services.DynamoFriendStore{Dynamo: dynamoService}

	// Services
	tokens := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	userService := &services.UserService{Users: userStore, Now: time.Now}
	listingService := &services.ListingService{
		Listings:   listingStore,
		Requests:   requestStore,
		Users:      userStore,
		Notifier:   hub,
		Now:        time.Now,
		DefaultTTL: cfg.Exchange.ListingTTL,
	}
	matchRequestService := &services.MatchRequestService{
		Requests: requestStore,
		Swaps:    requestStore,
		Listings: listingStore,
		Users:    userStore,
		Notifier: hub,
		Now:      time.Now,
		TTL:      cfg.Exchange.MatchRequestTTL,
	}
	messageService := &services.MessageService{Messages: messageStore, Users: userStore, Notifier: hub, Now: time.Now}

	svc := routes.Services{
		Tokens:        tokens,
		Auth:          &services.AuthService{Users: userStore, Tokens: tokens, Now: time.Now, Cost: bcrypt.DefaultCost},
		Users:         userService,
		Listings:      listingService,
		Suggestions:   &services.SuggestionService{Listings: listingService, Users: userStore},
		Uploads:       &services.UploadService{Storage: fileStorage, MaxBytes: cfg.Upload.MaxBytes, Now: time.Now},
		MatchRequests: matchRequestService,
		Messages:      messageService,
		CommonChat:    &services.CommonChatService{Dynamo: dynamoService, Users: userStore, Notifier: hub, Now: time.Now},
		Events:        &services.EventService{Dynamo: dynamoService, Notifier: hub, Now: time.Now},
		Courses:       &services.CourseService{Dynamo: dynamoService, Profiles: userService, Now: time.Now},
		Friends:       &services.FriendService{Friends: friendStore, Users: userStore, Notifier: hub, Now: time.Now},
		Sync:          &services.SyncService{Requests: requestStore, Messages: messageStore, Friends: friendStore, Now: time.Now},
		Presence:      hub,
		UploadDir:     uploadDir,
	}
	if cfg.AISuggestionAPIKey != "" {
		log.Println("ℹ️ AI_SUGGESTION_API_KEY is set; suggestions use the local scorer")
	}

	// Scheduled sweeps
	scheduler := services.NewSchedulerService(cfg.Exchange.SweepInterval)
	for _, job := range services.MaintenanceJobs(matchRequestService, listingService) {
		if err := scheduler.AddJob(job); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize the router
	r := mux.NewRouter()
	r.Use(middleware.Recoverer, middleware.RequestLogger)
	routes.RegisterRoutes(r, svc)

	corsPolicy := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Native clients send no Origin header
	allowSocketOrigin := func(r *http.Request) bool {
		return r.Header.Get("Origin") == "" || corsPolicy.OriginAllowed(r)
	}

	// The socket server hijacks connections, so it sits beside the logged router
	socketServer := socket.NewSocketServer(hub, tokens, messageService, allowSocketOrigin)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Printf("❌ Socket server stopped: %v", err)
		}
	}()
	defer socketServer.Close()

	root := http.NewServeMux()
	root.Handle("/socket.io/", corsPolicy.Handler(socketServer))
	root.Handle("/", corsPolicy.Handler(r))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Starting server on port %s...", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Graceful shutdown failed: %v", err)
	}
}

// newFileStorage picks the upload backend; the returned dir is non-empty for local storage
func newFileStorage(ctx context.Context, cfg *config.Config) (services.FileStorage, string) {
	if cfg.Upload.Driver == "s3" {
		storage, err := services.NewS3FileStorage(ctx, cfg.Dynamo.Region, cfg.Upload.Bucket)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("✅ Uploads stored in S3 bucket %s", cfg.Upload.Bucket)
		return storage, ""
	}
	log.Printf("✅ Uploads stored under %s", cfg.Upload.Dir)
	return &services.LocalFileStorage{Dir: cfg.Upload.Dir, PublicPrefix: "/uploads"}, cfg.Upload.Dir
}
