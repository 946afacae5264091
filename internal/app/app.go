package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"photomap-backend/internal/config"
	"photomap-backend/internal/db"
	"photomap-backend/internal/geo"
	"photomap-backend/internal/handlers"
	"photomap-backend/internal/services"
	"photomap-backend/internal/storage"
	"photomap-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Init DB
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.ConnString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Blob storage
	blobs, err := storage.NewBlobStore(cfg.Blob.Endpoint, cfg.Blob.AccessKey,
		cfg.Blob.SecretKey, cfg.Blob.Bucket, cfg.Blob.UseSSL)
	if err != nil {
		log.Fatalf("Failed to connect to blob storage: %v", err)
	}

	// Stores and services
	photoStore := store.NewPhotoStore(pool)
	profileStore := store.NewProfileStore(pool)

	authService := services.NewAuthService(pool, cfg.JWTSecret)
	uploadService := services.NewUploadService(blobs, photoStore)
	searcher := &geo.ScanSearcher{Photos: photoStore}
	profileService := services.NewProfileService(profileStore, blobs, searcher, cfg.NearbyRadiusKm)

	hub := handlers.NewFeedHub()

	// Fiber App
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Routes
	api := app.Group("/api")

	// Public Routes
	api.Post("/register", handlers.RegisterHandler(authService))
	api.Post("/login", handlers.LoginHandler(authService))

	// Protected Routes
	protected := api.Group("/")
	protected.Use(handlers.AuthMiddleware(authService))

	protected.Get("/photos", handlers.ListPhotosHandler(photoStore))
	protected.Post("/photos", handlers.UploadPhotoHandler(uploadService, hub))
	protected.Get("/photos/mine", handlers.MyPhotosHandler(photoStore, cfg.FeedPageSize))
	protected.Get("/photos/nearby", handlers.NearbyPhotosHandler(profileService))
	protected.Get("/photos/:id", handlers.GetPhotoHandler(photoStore))

	protected.Get("/profile", handlers.GetProfileHandler(profileService))
	protected.Put("/profile", handlers.UpdateProfileHandler(profileService))
	protected.Put("/profile/picture", handlers.UploadAvatarHandler(profileService))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket personal feed
	// Note: Middleware order matters. AuthMiddleware checks token.
	// WSUpgradeMiddleware checks if it's a WS request.
	app.Use("/ws/feed", handlers.WSUpgradeMiddleware)
	app.Use("/ws/feed", handlers.AuthMiddleware(authService))
	app.Get("/ws/feed", handlers.FeedSocketHandler(photoStore, hub, cfg.FeedPageSize))

	// Start Server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // Block until signal
	log.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}
