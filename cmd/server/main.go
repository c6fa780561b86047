package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/config"
	"github.com/stemsi/kumpul-tugas/internal/database"
	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/handler"
	"github.com/stemsi/kumpul-tugas/internal/logger"
	"github.com/stemsi/kumpul-tugas/internal/repository"
	"github.com/stemsi/kumpul-tugas/internal/router"
	"github.com/stemsi/kumpul-tugas/internal/service"
	"github.com/stemsi/kumpul-tugas/internal/validator"
	"github.com/stemsi/kumpul-tugas/internal/worker"
)

const defaultAdminPassword = "admin123"

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Str("files", cfg.FileBackend).
		Bool("class_registry", cfg.ClassRegistryEnabled).
		Bool("archive", cfg.ArchiveEnabled).
		Msg("Starting Kumpul Tugas")

	if cfg.AdminPasswordHash == "" && cfg.AdminPassword == defaultAdminPassword {
		log.Warn().Msg("Using the default admin password; set ADMIN_PASSWORD_HASH (see cmd/hash-password)")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handler.HealthCheck{}

	// ─── Ledger and Class Registry ─────────────────────────────────────
	var (
		ledger  repository.SubmissionStore
		classes repository.ClassStore
	)
	switch cfg.StorageDriver {
	case config.StorageDriverBolt:
		db, err := database.NewBoltDB(cfg.BoltPath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open bbolt database")
		}
		defer db.Close()
		ledger = repository.NewBoltSubmissionRepository(db)
		classes = repository.NewBoltClassRepository(db)
	case config.StorageDriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		ledger = repository.NewSubmissionRepository(pool)
		classes = repository.NewClassRepository(pool)
		checks["postgres"] = pool.Ping
	default:
		log.Fatal().Str("storage", cfg.StorageDriver).Msg("Unknown STORAGE_DRIVER")
	}

	// ─── File Store ────────────────────────────────────────────────────
	var (
		files     filestore.Store
		uploadDir string
	)
	switch cfg.FileBackend {
	case config.FileBackendB2:
		b2Store, err := filestore.NewB2(ctx, cfg.B2AccountID, cfg.B2AppKey, cfg.B2Bucket, cfg.UploadDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open B2 bucket")
		}
		files = b2Store
		log.Info().Str("bucket", cfg.B2Bucket).Msg("B2 file store ready")
	case config.FileBackendLocal:
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to create upload directory")
		}
		files = filestore.NewLocal(cfg.UploadDir)
		uploadDir = cfg.UploadDir
	default:
		log.Fatal().Str("files", cfg.FileBackend).Msg("Unknown FILE_BACKEND")
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	var (
		sessions service.SessionStore
		feed     service.Feed
	)
	if rdb != nil {
		defer rdb.Close()
		sessions = service.NewRedisSessionStore(rdb)
		feed = service.NewRedisFeed(rdb, log)
		checks["redis"] = redisPing(rdb)
	} else {
		sessions = service.NewMemorySessionStore()
		feed = service.NewMemoryFeed()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService, err := service.NewAuthService(cfg, sessions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize admin auth")
	}

	classService := service.NewClassService(classes, log)
	var registry *service.ClassService
	if cfg.ClassRegistryEnabled {
		registry = classService
	}

	var archiveService *service.ArchiveService
	if cfg.ArchiveEnabled {
		archiveService = service.NewArchiveService(files, log)
	}

	submissionService := service.NewSubmissionService(ledger, registry, files, feed, cfg.MaxUploadBytes, log)
	reviewService := service.NewReviewService(ledger, files, archiveService, log)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	integrityWorker := worker.NewIntegrityWorker(ledger, files, worker.DefaultIntegrityInterval, log)
	go integrityWorker.Start(workerCtx)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		Submission: handler.NewSubmissionHandler(submissionService, registry, log),
		Review:     handler.NewReviewHandler(reviewService, log),
		Feed:       handler.NewFeedHandler(feed, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(uploadDir, checks, integrityWorker, log),
	}
	if registry != nil {
		handlers.Class = handler.NewClassHandler(registry)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests; in-flight uploads get 15s.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

func redisPing(rdb *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
