package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/challanai/invoice-chat-service/api"
	"github.com/challanai/invoice-chat-service/internal/ai"
	"github.com/challanai/invoice-chat-service/internal/config"
	"github.com/challanai/invoice-chat-service/internal/db"
	"github.com/challanai/invoice-chat-service/internal/logger"
	"github.com/challanai/invoice-chat-service/internal/metrics"
	"github.com/challanai/invoice-chat-service/internal/models"
	"github.com/challanai/invoice-chat-service/internal/services"
	"github.com/challanai/invoice-chat-service/internal/storage"
)

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool
	registry := db.NewRegistry(cfg.Database, zlog)
	defer registry.Close()

	checks := map[string]api.Pinger{}
	if store, err := registry.Open(ctx, nil); err != nil {
		zlog.Warn("database not available, requests must carry db_config", zap.Error(err))
	} else {
		if err := store.EnsureSchema(ctx); err != nil {
			zlog.Fatal("failed to prepare schema", zap.Error(err))
		}
		checks["database"] = poolPinger{registry}
		zlog.Info("database connection pool initialized", zap.String("schema", cfg.Database.Schema))
	}

	// Language model
	var extractor services.TextExtractor
	provider, err := ai.NewProvider(cfg.AI, cfg.AI.DefaultProvider)
	if err != nil {
		zlog.Warn("language model not configured, /generate_invoice is disabled", zap.Error(err))
	} else {
		extractor = ai.NewExtractor(provider)
	}

	// Initialize MinIO storage
	var archive *storage.Archive
	if cfg.Storage.Enabled {
		archive, err = storage.New(ctx, cfg.Storage)
		if err != nil {
			zlog.Warn("MinIO storage not available, invoices will not be archived", zap.Error(err))
			archive = nil
		} else {
			checks["storage"] = archive
			zlog.Info("MinIO storage initialized", zap.String("bucket", cfg.Storage.Bucket))
		}
	}

	service := services.NewService(services.ServiceOptions{
		Resolver:         services.NewResolver(cfg.Matching, zlog),
		Assembler:        services.NewAssembler(cfg.Invoice),
		Extractor:        extractor,
		Archiver:         archiverOrNil(archive),
		Metrics:          metrics.New(prometheus.DefaultRegisterer),
		Logger:           zlog,
		DBTimeout:        cfg.Timeouts.Database,
		LLMTimeout:       cfg.Timeouts.LLM,
		MaxNumberRetries: cfg.Invoice.MaxNumberRetries,
	})

	// Create API handler
	handler := api.NewHandler(api.Options{
		Config:  cfg,
		Service: service,
		OpenStore: func(ctx context.Context, override *models.DatabaseOverride) (api.InvoiceStore, error) {
			store, err := registry.Open(ctx, override)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
		Archive: linkerOrNil(archive),
		Checks:  checks,
		Metrics: promhttp.Handler(),
		Logger:  zlog,
	})
	defer handler.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Timeouts.LLM + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zlog.Info("starting invoice chat service",
		zap.String("addr", addr),
		zap.String("version", api.Version),
		zap.String("ai_provider", cfg.AI.DefaultProvider),
		zap.String("match_policy", cfg.Matching.Policy),
		zap.Bool("llm", extractor != nil),
		zap.Bool("storage", archive != nil),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

type poolPinger struct {
	registry *db.Registry
}

func (p poolPinger) Ping(ctx context.Context) error {
	pool, err := p.registry.Default(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// A nil *storage.Archive must not become a non-nil interface.
func archiverOrNil(a *storage.Archive) services.Archiver {
	if a == nil {
		return nil
	}
	return a
}

func linkerOrNil(a *storage.Archive) api.PDFLinker {
	if a == nil {
		return nil
	}
	return a
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
