package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/azatkul/docvault/internal/auth"
	"github.com/azatkul/docvault/internal/blob"
	"github.com/azatkul/docvault/internal/config"
	"github.com/azatkul/docvault/internal/enrich"
	"github.com/azatkul/docvault/internal/file"
	"github.com/azatkul/docvault/internal/logger"
	"github.com/azatkul/docvault/internal/openai"
	"github.com/azatkul/docvault/internal/search"
	"github.com/azatkul/docvault/internal/server"
	"github.com/azatkul/docvault/internal/storage"
)

func main() {
	_ = godotenv.Load()

	zlog, err := logger.Init()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := storage.Migrate(cfg.Postgres); err != nil {
		zlog.Fatal("apply migrations", zap.Error(err))
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	blobs, err := buildBlobStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("init blob store", zap.Error(err))
	}

	authRepo := auth.NewRepository(dbPool)
	authService := auth.NewService(authRepo, cfg.Auth)

	fileRepo := file.NewRepository(dbPool)
	quota := file.NewQuota(fileRepo, cfg.Quota.CeilingBytes)

	opts := file.Options{
		Ranker: search.Ranker{
			Threshold: cfg.Search.Threshold,
			Limit:     cfg.Search.Limit,
		},
		CacheEntries: cfg.Cache.MaxEntries,
		CacheTTL:     cfg.Cache.TTL,
		Logger:       zlog,
	}

	if cfg.OpenAI.APIKey != "" {
		ai := openai.New(cfg.OpenAI)
		opts.Embedder = ai
		opts.Enricher = enrich.NewPipeline(
			enrich.PlainTextExtractor{},
			ai, ai, ai,
			cfg.Enrich.EligibleTypes,
			cfg.Enrich.Timeout,
			zlog,
		)
	} else {
		zlog.Warn("no OpenAI key configured, enrichment and semantic search disabled")
	}

	fileService := file.NewService(fileRepo, blobs, quota, opts)

	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		DB:          dbPool,
		Blobs:       blobs,
		AuthService: authService,
		FileService: fileService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info("DocVault API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zlog.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}

func buildBlobStore(ctx context.Context, cfg config.Config, zlog *zap.Logger) (blob.Store, error) {
	switch cfg.Blob.Backend {
	case "local":
		zlog.Info("using local blob backend", zap.String("root", cfg.Blob.LocalRoot))
		return blob.NewLocalStore(cfg.Blob.LocalRoot)
	default:
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			return nil, err
		}
		return blob.NewMinIOStore(client, cfg.MinIO.Bucket), nil
	}
}
