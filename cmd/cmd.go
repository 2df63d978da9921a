package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abuildsit/borrowlog/internal/blob"
	"github.com/abuildsit/borrowlog/internal/config"
	"github.com/abuildsit/borrowlog/internal/handlers"
	"github.com/abuildsit/borrowlog/internal/middleware"
	"github.com/abuildsit/borrowlog/internal/repository"
	"github.com/abuildsit/borrowlog/internal/services"
	"github.com/abuildsit/borrowlog/internal/store"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// One explicitly constructed store client shared for the process
	// lifetime; tests substitute their own instance.
	storeClient := store.NewPostgresClient(db, repository.Schemas)

	// Blob store for loan photos and avatars
	uploader, err := blob.NewS3Store(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(storeClient)
	contactRepo := repository.NewContactRepository(storeClient)
	notificationRepo := repository.NewNotificationRepository(storeClient)
	profileRepo := repository.NewProfileRepository(storeClient)

	// Initialize services
	hub := services.NewHub()
	notificationService := services.NewNotificationService(notificationRepo, hub)
	loanService := services.NewLoanService(loanRepo, contactRepo, notificationService, uploader)
	contactService := services.NewContactService(contactRepo)
	profileService := services.NewProfileService(profileRepo, uploader)

	// Initialize handlers
	verifier := middleware.NewVerifier(cfg.JWT.Secret)
	loanHandler := handlers.NewLoanHandler(loanService)
	contactHandler := handlers.NewContactHandler(contactService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	profileHandler := handlers.NewProfileHandler(profileService)
	wsHandler := handlers.NewWebSocketHandler(hub, verifier)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(verifier))

			r.Get("/loans", loanHandler.ListLoans)
			r.Post("/loans", loanHandler.CreateLoan)
			r.Get("/loans/{loan_id}", loanHandler.GetLoan)
			r.Delete("/loans/{loan_id}", loanHandler.DeleteLoan)
			r.Post("/loans/{loan_id}/return", loanHandler.ReturnLoan)
			r.Post("/loans/{loan_id}/return-request", loanHandler.RequestReturn)

			r.Get("/contacts", contactHandler.ListContacts)
			r.Post("/contacts", contactHandler.CreateContact)
			r.Put("/contacts/{contact_id}", contactHandler.UpdateContact)
			r.Delete("/contacts/{contact_id}", contactHandler.DeleteContact)

			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Post("/notifications/{notification_id}/read", notificationHandler.MarkRead)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)

			r.Get("/profile", profileHandler.GetProfile)
			r.Post("/profile", profileHandler.CreateProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Post("/profile/avatar", profileHandler.UpdateAvatar)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
