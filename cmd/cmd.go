package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-gallery-backend/internal/config"
	"photo-gallery-backend/internal/handlers"
	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/repository"
	"photo-gallery-backend/internal/services"

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

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	galleryRepo := repository.NewGalleryRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Initialize services
	accessService, err := services.NewAccessService(cfg.Auth.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create access service")
	}

	urlCache := services.NewURLCache()
	defer urlCache.Close()

	storageService, err := services.NewStorageService(context.Background(), cfg, urlCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage service")
	}
	if !cfg.S3Configured() {
		log.Warn().Msg("Object storage not configured, serving placeholder URLs")
	}

	imageService := services.NewImageService(cfg.Upload)
	photoService := services.NewPhotoService(photoRepo, imageService, storageService)
	galleryService := services.NewGalleryService(galleryRepo, photoRepo, accessService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, accessService)
	galleryHandler := handlers.NewGalleryHandler(galleryService, photoService, accessService)
	photoHandler := handlers.NewPhotoHandler(photoService, galleryService, accessService)
	adminHandler := handlers.NewAdminHandler(galleryService, photoService, settingsRepo, cfg.Upload.MaxFileSize)
	contactHandler := handlers.NewContactHandler(contactRepo)

	// Per-IP limiter for tracking and unlock endpoints
	rateLimiter := middleware.NewRateLimiter(30, time.Minute)
	defer rateLimiter.Close()

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
		// Public routes
		r.Get("/galleries", galleryHandler.ListGalleries)
		r.Get("/galleries/{slug}", galleryHandler.GetGallery)
		r.Get("/galleries/{slug}/photos", galleryHandler.GetGalleryPhotos)
		r.Get("/featured", photoHandler.GetFeatured)
		r.Post("/auth/login", authHandler.Login)

		// Rate-limited public routes
		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Middleware)
			r.Post("/galleries/{slug}/unlock", galleryHandler.UnlockGallery)
			r.Post("/contact", contactHandler.Submit)
			r.Get("/photos/{id}", photoHandler.GetPhoto)
			r.Get("/photos/{id}/download", photoHandler.DownloadPhoto)
		})

		// Protected admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(accessService))
			r.Get("/auth/me", authHandler.Me)
			r.Get("/admin/galleries", adminHandler.ListGalleries)
			r.Post("/admin/galleries", adminHandler.CreateGallery)
			r.Patch("/admin/galleries/{id}", adminHandler.UpdateGallery)
			r.Delete("/admin/galleries/{id}", adminHandler.DeleteGallery)
			r.Put("/admin/galleries/{id}/cover", adminHandler.SetCoverPhoto)
			r.Get("/admin/galleries/{id}/photos", adminHandler.ListGalleryPhotos)
			r.Post("/admin/galleries/{id}/photos", adminHandler.UploadPhoto)
			r.Put("/admin/galleries/{id}/order", adminHandler.ReorderPhotos)
			r.Patch("/admin/photos/{id}", adminHandler.UpdatePhoto)
			r.Delete("/admin/photos/{id}", adminHandler.DeletePhoto)
			r.Post("/admin/photos/move", adminHandler.MovePhotos)
			r.Get("/admin/stats", adminHandler.GetStats)
			r.Get("/admin/messages", contactHandler.ListMessages)
			r.Get("/admin/settings", adminHandler.GetSettings)
			r.Put("/admin/settings", adminHandler.UpdateSettings)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Environment).
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

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
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
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
