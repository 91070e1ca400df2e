package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/cli"
	applog "spendlog/internal/log"
	"spendlog/internal/recordstore"
	gsheet "spendlog/internal/sheets/google"
	"spendlog/internal/storage"
	"spendlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp, os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting spendlog worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	mirror, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger.Base())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	// Reconciliation reads the database directly when it is local and goes
	// through the record store API otherwise.
	var records worker.ExpenseLister
	var closeRecords func() error
	if cfg.ReconcileInterval > 0 {
		if cfg.DataBackend == "sqlite" {
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				logger.Error("Failed to open SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
				os.Exit(1)
			}
			records, closeRecords = repo, repo.Close
		} else {
			client, err := recordstore.NewClient(cfg.RecordStoreURL, recordstore.WithLogger(logger.Base()))
			if err != nil {
				logger.Error("Failed to create record store client", applog.FieldError, err)
				os.Exit(1)
			}
			records = client
		}
	}

	syncWorker := worker.NewSyncWorker(mirror, records, logger.Base())

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.Base())
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	var reconciler *worker.Reconciler
	if records != nil {
		reconciler = worker.NewReconciler(syncWorker, cfg.ReconcileInterval)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if reconciler != nil {
			if err := reconciler.Stop(ctx); err != nil {
				logger.Warn("Reconciler did not stop cleanly", applog.FieldError, err)
			}
		}
		if err := consumer.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", applog.FieldError, err)
		}
		if closeRecords != nil {
			if err := closeRecords(); err != nil {
				logger.Warn("Failed to close repository", applog.FieldError, err)
			}
		}
	})

	if reconciler != nil {
		if err := reconciler.Start(ctx); err != nil {
			logger.Error("Failed to start reconciler", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Reconciliation enabled", "interval", cfg.ReconcileInterval)
	}

	logger.Info("Consuming expense events", "queue", cfg.AMQPQueue)
	if err := consumer.Consume(ctx, syncWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
