package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/cache"
	"moneytracker/internal/cli"
	"moneytracker/internal/config"
	"moneytracker/internal/log"
	"moneytracker/internal/sheets"
	gsheet "moneytracker/internal/sheets/google"
	mem "moneytracker/internal/sheets/memory"
	"moneytracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"), slog.LevelInfo, log.ComponentWorker)
	logger.Info("Starting sheets-sync")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	// Choose the journal backend (default: memory).
	var appender sheets.RowAppender
	switch cfg.JournalBackend {
	case "sheets":
		gs, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		appender = gs
		logger.Info("Journaling to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	default:
		appender = mem.New()
		logger.Info("Journaling to memory - events are logged but not persisted")
	}

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	seen := cache.NewLRUCache[struct{}](cfg.JournalDedupMax, cfg.JournalDedupTTL)
	caches := cache.NewManager(logger)
	caches.Register(seen)
	caches.StartCleanup(10 * time.Minute)

	journal := worker.NewJournalWorker(appender, cfg.GoogleSheetName, seen, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		caches.Stop()
		if err := events.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
		st := journal.Stats()
		logger.Info("Journal totals", "processed", st.Processed, "duplicates", st.Duplicates, "failures", st.Failures)
	})

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := journal.Stats()
				logger.Debug("Journal progress", "processed", st.Processed, "duplicates", st.Duplicates, "failures", st.Failures)
			}
		}
	}()

	if err := events.Consume(ctx, journal.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
