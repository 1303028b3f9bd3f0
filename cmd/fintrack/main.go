package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func main() {
	// Load .env for local development; production relies on real env vars.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	appLogger := logger.WithComponent(log.ComponentApp)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.DataBackend {
	case "memory":
		store = memory.NewStore()
		appLogger.Info("Initialized memory backend")
	default:
		sqliteStore, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite store",
				log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		store = sqliteStore
		appLogger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	}
	defer store.Close()

	// The broker is optional for the API: without it reports still generate,
	// only async exports stay pending.
	var queue services.ExportPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		appLogger.Warn("AMQP unavailable, exports will not be queued", log.FieldError, err)
	} else {
		queue = amqpClient
		defer amqpClient.Close()
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Store:    store,
		Queue:    queue,
		Logger:   logger,
		CacheTTL: cfg.CacheTTL,
	})
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	cacheManager := cache.NewManager()
	srv.RegisterCaches(cacheManager)
	cacheManager.StartCleanup(cfg.CacheCleanupInterval)
	defer cacheManager.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		appLogger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	appLogger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLogger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	appLogger.Info("Server stopped gracefully")
}
