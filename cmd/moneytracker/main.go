package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"moneytracker/internal/amqp"
	"moneytracker/internal/api"
	"moneytracker/internal/app"
	"moneytracker/internal/cli"
	"moneytracker/internal/i18n"
	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
	"moneytracker/internal/session"
	"moneytracker/internal/sheets"
	gsheet "moneytracker/internal/sheets/google"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	// Diagnostics go to stderr so they never mix with rendered output.
	logger := cli.SetupLogger(os.Stderr, os.Getenv("LOG_LEVEL"), slog.LevelWarn, log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := cli.OpenState(logger, cfg.StatePath)
	defer state.Close()

	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithFallbackMessage(i18n.T(cfg.Language(), i18n.RequestFailed)),
		api.WithLogger(logger))

	sess, err := session.New(ctx, state, client, logger)
	if err != nil {
		logger.Error("Failed to restore session", log.FieldError, err)
		return 1
	}
	client.SetTokenSource(sess)

	opts := []ledger.Option{ledger.WithSnapshots(state), ledger.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, ledger events disabled", log.FieldError, err)
		} else {
			defer events.Close()
			opts = append(opts, ledger.WithNotifier(events))
		}
	}
	store := ledger.New(client, opts...)

	var exporter sheets.RowAppender
	if cfg.HasSheets() {
		gs, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Warn("Failed to initialize Google Sheets client, export disabled", log.FieldError, err)
		} else {
			exporter = gs
		}
	}

	a := app.New(ctx, app.Options{
		Session:     sess,
		Ledger:      store,
		Prefs:       state,
		Exporter:    exporter,
		ExportSheet: cfg.GoogleExportSheetName,
		Lang:        cfg.Language(),
		Thresholds:  cfg.Thresholds(),
		In:          os.Stdin,
		Out:         os.Stdout,
		Logger:      logger,
	})

	return a.Run(ctx, os.Args[1:])
}
