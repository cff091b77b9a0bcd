package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/genai"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohammadpnp/resumebatch/internal/bootstrap"
	"github.com/mohammadpnp/resumebatch/internal/config"
	"github.com/mohammadpnp/resumebatch/internal/infrastructure/objectstore"
	"github.com/mohammadpnp/resumebatch/internal/infrastructure/repository"
	"github.com/mohammadpnp/resumebatch/internal/logging"
	"github.com/mohammadpnp/resumebatch/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}
	if cfg.StorageBucket == "" {
		log.Fatal("STORAGE_BUCKET is required")
	}

	logger, err := logging.New(os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to create pgx pool", zap.Error(err))
	}
	defer pool.Close()

	store := repository.NewPostgresStateStore(pool, db)

	objects, err := objectstore.NewBlobGateway(ctx, cfg.StorageBucket, cfg.S3Endpoint, cfg.S3Region)
	if err != nil {
		logger.Fatal("failed to open object store bucket", zap.Error(err))
	}
	defer objects.Close() //nolint:errcheck

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Fatal("failed to create genai client", zap.Error(err))
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	engine := bootstrap.NewEngine(store, objects, genaiClient, cfg.GeminiModel, recorder, logger, cfg.EngineConfig())

	if err := engine.ResumeRunningBatches(ctx); err != nil {
		logger.Error("failed to resume running batches after restart", zap.Error(err))
	}
	go engine.Run(ctx)

	server := bootstrap.NewHTTPServer(engine)
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
}
