package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/brainyflash/internal/api"
	"github.com/vytor/brainyflash/internal/blob"
	"github.com/vytor/brainyflash/internal/completion"
	"github.com/vytor/brainyflash/internal/config"
	"github.com/vytor/brainyflash/internal/db"
	"github.com/vytor/brainyflash/internal/identity"
	"github.com/vytor/brainyflash/internal/jobs"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/repository/sqlite"
	"github.com/vytor/brainyflash/internal/services"
	"github.com/vytor/brainyflash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	defer log.Sync()

	log.Info("===========================================")
	log.Info("BrainyFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("frontend_url=%s", cfg.FrontendURL)
	log.Debug("cors_allowed_origins=%v", cfg.CORSAllowedOrigins)
	log.Debug("blob_backend=%s", cfg.BlobBackend)
	log.Debug("completion_enabled=%t", cfg.CompletionEnabled())
	log.Debug("cleanup_worker_count=%d", cfg.CleanupWorkerCount)
	log.Debug("cleanup_queue_size=%d", cfg.CleanupQueueSize)
	log.Debug("max_upload_bytes=%d", cfg.MaxUploadBytes)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Blob store
	var store blob.Store
	var filesDir string
	switch cfg.BlobBackend {
	case config.BlobBackendGCS:
		gcs, err := blob.NewGCSStore(ctx, cfg.GCSBucket, cfg.BlobBaseURL())
		if err != nil {
			log.Error("failed to create GCS blob store: %v", err)
			os.Exit(1)
		}
		defer gcs.Close()
		store = gcs
	default:
		local, err := blob.NewLocalStore(cfg.BlobDir, cfg.BlobBaseURL())
		if err != nil {
			log.Error("failed to create local blob store: %v", err)
			os.Exit(1)
		}
		store = local
		filesDir = local.Dir()
	}

	// Completion backend
	var completionService completion.Service = completion.Disabled{}
	if cfg.CompletionEnabled() {
		completionService = completion.New(completion.Options{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.CompletionTimeout,
		})
	} else {
		log.Warn("OPENAI_API_KEY not set; AI generation and suggestions are disabled")
	}

	// Initialize worker pool
	cleanupPool := worker.NewPool(cfg.CleanupWorkerCount, cfg.CleanupQueueSize)
	jobQueue := jobs.NewWorkerQueue(cleanupPool, store)

	// Initialize repositories
	profileRepo := sqlite.NewProfileRepository(database.DB)
	setRepo := sqlite.NewSetRepository(database.DB)
	favoriteRepo := sqlite.NewFavoriteRepository(database.DB)
	flashcardRepo := sqlite.NewFlashcardRepository(database.DB)
	collaboratorRepo := sqlite.NewCollaboratorRepository(database.DB)
	linkRepo := sqlite.NewShareLinkRepository(database.DB)
	studyRepo := sqlite.NewStudyRepository(database.DB)

	// Initialize services
	srv := &api.Server{
		DB:                  database.DB,
		Verifier:            identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		ProfileService:      services.NewProfileService(profileRepo),
		SetService:          services.NewSetService(setRepo, flashcardRepo, favoriteRepo, collaboratorRepo, jobQueue, store),
		FlashcardService:    services.NewFlashcardService(setRepo, collaboratorRepo, flashcardRepo, jobQueue, store),
		CollaboratorService: services.NewCollaboratorService(setRepo, collaboratorRepo, profileRepo),
		SharingService:      services.NewSharingService(setRepo, flashcardRepo, collaboratorRepo, linkRepo, cfg.FrontendURL),
		StudyService:        services.NewStudyService(setRepo, collaboratorRepo, flashcardRepo, studyRepo, completionService, cfg.CompletionTimeout),
		GenerationService:   services.NewGenerationService(setRepo, collaboratorRepo, flashcardRepo, completionService, cfg.CompletionTimeout),
		UploadService:       services.NewUploadService(store, cfg.MaxUploadBytes),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		FilesDir:            filesDir,
	}

	cleanupPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop accepting requests first so no new cleanup jobs are queued.
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("draining cleanup pool (queued=%d)", cleanupPool.QueueSize())
	cleanupPool.Stop()

	log.Info("===========================================")
	log.Info("BrainyFlash Server Stopped")
	log.Info("===========================================")
}
