package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"moneytracker/internal/cli"
	"moneytracker/internal/config"
	"moneytracker/internal/log"
	"moneytracker/internal/mockapi"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"), slog.LevelInfo, log.ComponentMockAPI)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	api, err := mockapi.NewServer(mockapi.Config{
		Username:               cfg.MockAPIUsername,
		Password:               cfg.MockAPIPassword,
		JWTSecret:              []byte(cfg.MockAPIJWTSecret),
		TokenTTL:               cfg.MockAPITokenTTL,
		LoginAttemptsPerMinute: cfg.MockAPILoginLimit,
		Logger:                 logger,
	})
	if err != nil {
		logger.Error("Failed to initialize development backend", log.FieldError, err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.MockAPIPort,
		Handler:        api,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		api.Close()
		m := api.Metrics()
		logger.Info("Request totals", "total", m.TotalRequests, "client_errors", m.ClientErrors, "server_errors", m.ServerErrors)
	})

	logger.Info("Starting development backend", "port", cfg.MockAPIPort, "username", cfg.MockAPIUsername)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.MockAPIPort)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
