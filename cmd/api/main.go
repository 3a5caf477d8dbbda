package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/El-Ikhsan/ktp-extractor/internal/cache"
	"github.com/El-Ikhsan/ktp-extractor/internal/config"
	"github.com/El-Ikhsan/ktp-extractor/internal/database"
	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/handler"
	"github.com/El-Ikhsan/ktp-extractor/internal/middleware"
	"github.com/El-Ikhsan/ktp-extractor/internal/repository"
	"github.com/El-Ikhsan/ktp-extractor/internal/service"
	"github.com/El-Ikhsan/ktp-extractor/internal/utils"
	"github.com/El-Ikhsan/ktp-extractor/internal/worker"
)

// main is the application entrypoint for the KTP extraction API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting ktp extractor api")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize result cache
	resultCache := cache.NewResultCache(redisClient, cfg.Cache.ResultTTL)

	// 4. Load reference datasets
	datasets := dataset.Load(cfg.Dataset.Dir)
	log.Info().Int("categories", datasets.LoadedCount()).Msg("reference datasets loaded")

	// 5. Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	extractionRepo := repository.NewExtractionRepository(db)

	// 6. Initialize OCR engines
	engineRouter := service.NewEngineRouter(cfg.OCR.DefaultEngine)
	engineRouter.Register(service.NewTesseractEngine(cfg.OCR.TesseractLanguage))

	if cfg.OCR.EasyOCRURL != "" {
		engineRouter.Register(service.NewEasyOCREngine(cfg.OCR.EasyOCRURL, cfg.OCR.EasyOCRTimeout))
	}

	if cfg.AWS.AccessKeyID != "" && cfg.AWS.SecretAccessKey != "" {
		rekognitionEngine, err := service.NewRekognitionEngine(context.Background(), cfg.AWS.RekognitionRegion)
		if err != nil {
			log.Warn().Err(err).Msg("Rekognition engine initialization failed - engine will be disabled")
		} else {
			engineRouter.Register(rekognitionEngine)
		}
	}

	// 7. Initialize services
	authSvc := service.NewAuthService(clientRepo)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	clientSvc := service.NewClientService(clientRepo)

	normalizer := service.NewNormalizer(datasets, cfg.Dataset.Threshold)
	arbitrator := service.NewArbitrator(normalizer, datasets)
	detector := service.NewDetectorClient(cfg.Detector.URL, cfg.Detector.MinConfidence, cfg.Detector.Timeout)

	// S3 archival is optional; extraction keeps working without it.
	var uploader service.DocumentUploader
	s3Svc, err := service.NewS3Service(&cfg.S3)
	if err != nil {
		log.Warn().Err(err).Msg("S3 service initialization failed - document archival will be disabled")
	} else {
		uploader = s3Svc
	}

	extractionSvc := service.NewExtractionService(detector, engineRouter, arbitrator, datasets, extractionRepo, resultCache, uploader)

	// 8. Initialize handlers
	handlers := &Handlers{
		Health:     handler.NewHealthHandler(db, redisClient, datasets, engineRouter),
		Client:     handler.NewClientHandler(clientSvc),
		Auth:       handler.NewAuthHandler(adminAuthSvc),
		Extraction: handler.NewExtractionHandler(extractionSvc),
		Reference:  handler.NewReferenceHandler(datasets, cfg.Dataset.Threshold),
	}

	// 9. Initialize middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	jwtMw := middleware.NewJWTMiddleware()

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, authMw, jwtMw)

	// 11. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 12. Start workers
	go worker.NewRetentionWorker(extractionRepo, cfg.Worker.RetentionInterval, cfg.Worker.RetentionMaxAge).Start(ctx)

	// 13. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 15. Cancel context to stop workers
	cancel()

	// 16. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Client     *handler.ClientHandler
	Auth       *handler.AuthHandler
	Extraction *handler.ExtractionHandler
	Reference  *handler.ReferenceHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMiddleware *middleware.AuthMiddleware, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Identity extraction routes (protected with client API key)
	identity := router.Group("/v1/identity")
	identity.Use(authMiddleware.Handle())
	{
		identity.POST("/extract", handlers.Extraction.Extract)
		identity.GET("/extract/:id", handlers.Extraction.GetExtraction)
		identity.GET("/engines", handlers.Extraction.Engines)
	}

	// Reference dataset routes (protected with client API key)
	reference := router.Group("/v1/reference")
	reference.Use(authMiddleware.Handle())
	{
		reference.GET("/match", handlers.Reference.Match)
		reference.GET("/:category", handlers.Reference.ListCategory)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		// Client Management
		admin.POST("/clients", handlers.Client.CreateClient)
		admin.GET("/clients", handlers.Client.ListClients)
		admin.GET("/clients/:id", handlers.Client.GetClient)
		admin.GET("/clients/by-client-id/:client_id", handlers.Client.GetClientByClientID)
		admin.PUT("/clients/:id", handlers.Client.UpdateClient)
		admin.POST("/clients/:id/regenerate", handlers.Client.RegenerateKeys)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
