package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/AtanuDevOps/blood-project/internal/config"
	"github.com/AtanuDevOps/blood-project/internal/handlers"
	appMiddleware "github.com/AtanuDevOps/blood-project/internal/middleware"
	"github.com/AtanuDevOps/blood-project/internal/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Firebase Auth (server-side verification of ID tokens from clients that
	// still log in through the original web flow). Optional.
	firebaseClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		CredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
	})
	if err != nil {
		log.Printf("Warning: Firebase Auth disabled: %v", err)
		firebaseClient = nil
	}

	hub := services.NewHub()

	var (
		donorSvc        handlers.DonorDirectory
		contactSvc      handlers.ContactDirectory
		notificationSvc handlers.NotificationInbox
	)

	if cfg.MongoURI != "" {
		mongoNotifications, err := services.NewMongoNotificationService(ctx, cfg.MongoURI, cfg.MongoDB, hub)
		if err != nil {
			log.Fatalf("mongo notification service init failed: %v", err)
		}
		mongoContacts, err := services.NewMongoContactService(ctx, cfg.MongoURI, cfg.MongoDB, mongoNotifications, hub)
		if err != nil {
			log.Fatalf("mongo contact service init failed: %v", err)
		}
		mongoDonors, err := services.NewMongoDonorService(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("mongo donor service init failed: %v", err)
		}
		donorSvc = mongoDonors
		contactSvc = mongoContacts
		notificationSvc = mongoNotifications
	} else {
		log.Printf("MONGO_URI not set, using local JSON storage in %s", cfg.DataDir)
		notifications := services.NewNotificationService(hub)
		contacts := services.NewContactService(notifications, hub)
		donors, err := services.NewDonorService(cfg.DataDir)
		if err != nil {
			log.Fatalf("donor service init failed: %v", err)
		}
		donorSvc = donors
		contactSvc = contacts
		notificationSvc = notifications
	}

	recaptcha := services.NewRecaptchaVerifier(cfg.RecaptchaSecret)

	authHandler := handlers.NewAuthHandler(donorSvc, cfg.JWTSecret, cfg.JWTExpiration)
	donorHandler := handlers.NewDonorHandler(donorSvc, contactSvc)
	requestHandler := handlers.NewRequestHandler(contactSvc, recaptcha)
	chatHandler := handlers.NewChatHandler(contactSvc)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc)
	streamHandler := handlers.NewStreamHandler(hub, contactSvc)

	auth := appMiddleware.NewAuthenticator(cfg.JWTSecret, firebaseClient)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Public directory and guest actions. Optional auth so logged-in
		// donors get their own id attached.
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)

			r.Get("/donors", donorHandler.ListDonors)
			r.Get("/donors/{donorId}", donorHandler.GetDonor)

			r.Post("/requesters", requestHandler.MintRequester)
			r.Post("/donors/{donorId}/contact-requests", requestHandler.Submit)
			r.Get("/donors/{donorId}/contact-requests/{requesterId}", requestHandler.Status)

			r.Get("/chats/{chatId}/messages", chatHandler.ListMessages)
			r.Post("/chats/{chatId}/messages", chatHandler.SendMessage)

			r.Get("/notifications", notificationHandler.List)
			r.Get("/notifications/unread-count", notificationHandler.UnreadCount)
			r.Post("/notifications/{notificationId}/read", notificationHandler.MarkRead)

			r.Get("/streams/chats/{chatId}", streamHandler.Chat)
			r.Get("/streams/notifications", streamHandler.Notifications)
		})

		// Donor-only routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.Require)

			r.Get("/me", authHandler.Me)
			r.Post("/me/donations", donorHandler.RecordDonation)
			r.Get("/me/availability", donorHandler.MyAvailability)
			r.Get("/me/contact-requests", requestHandler.Inbox)
			r.Get("/me/chats", chatHandler.ListThreads)
			r.Post("/contact-requests/{requestId}/decision", requestHandler.Decide)

			r.Get("/streams/requests", streamHandler.Requests)
		})
	})

	log.Printf("Blood donor API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
