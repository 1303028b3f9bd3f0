package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	workerLogger := logger.WithComponent(log.ComponentWorker)

	workerLogger.Info("Starting fintrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		workerLogger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.DataBackend {
	case "memory":
		store = memory.NewStore()
	default:
		sqliteStore, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			workerLogger.Error("Failed to initialize SQLite store",
				log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		store = sqliteStore
	}
	defer store.Close()

	// Google Sheets delivery is optional; file exports work without it.
	var sheets services.SheetsPusher
	if cfg.SheetsConfigured() {
		target, err := export.NewSheetsTargetFromEnv(context.Background())
		if err != nil {
			workerLogger.Error("Failed to initialize Google Sheets target", log.FieldError, err)
			os.Exit(1)
		}
		sheets = target
		workerLogger.Info("Google Sheets target initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		workerLogger.Info("Google Sheets disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		workerLogger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processor := services.NewExportProcessor(store, cfg.ExportDir, sheets, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := amqpClient.ConsumeReportExports(ctx, func(msg *amqp.ReportExportMessage) error {
			return processor.Handle(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			workerLogger.Error("Message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		workerLogger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		workerLogger.Info("Context cancelled")
	}

	cancel()
	// Let the in-flight export finish before the process exits.
	time.Sleep(2 * time.Second)
	workerLogger.Info("Worker shutdown complete")
}
