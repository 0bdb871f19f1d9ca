// Package cli holds the start-up steps shared by cmd/fintrack,
// cmd/fintrack-worker and cmd/fintrackctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	sheetsmem "fintrack/internal/sheets/memory"
)

// SetupLogger builds the process logger for component at the given level
// and installs it as the slog default. Unknown levels fall back to info.
func SetupLogger(level, component string) *log.Logger {
	lvl, _ := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads and validates the configuration.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend opens the store selected by cfg and, when AMQP is configured,
// the change feed publisher.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend)).CreateBackend(ctx, bcfg)
}

// Services wires the record and dashboard services over an open backend.
// Writes through the record service invalidate the dashboard cache.
func Services(cfg *config.Config, res *backend.BackendResult) (*services.RecordService, *services.DashboardService) {
	dashboards := services.NewDashboardService(res.Store, cfg.DashboardCacheSize, cfg.DashboardCacheTTL)
	return services.NewRecordService(res.Store, res.Publisher, dashboards), dashboards
}

// SheetsWriter returns the Google Sheets client when the mirror is
// configured and an in-memory writer otherwise. The boolean reports
// whether the real spreadsheet is in use.
func SheetsWriter(ctx context.Context, cfg *config.Config) (sheets.TableWriter, bool, error) {
	if !cfg.SheetsEnabled() {
		return sheetsmem.New(), false, nil
	}
	client, err := gsheet.NewWithServiceAccount(ctx, cfg.GoogleSpreadsheetID,
		cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		return nil, false, fmt.Errorf("google sheets: %w", err)
	}
	return client, true, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned function runs cleanup under timeout once the context is done and
// blocks until it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, func()) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	wait := func() {
		<-ctx.Done()
		stop()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
		}()

		select {
		case <-done:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}
	return ctx, wait
}
