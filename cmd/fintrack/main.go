package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/importer/ofx"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	records, dashboards := cli.Services(cfg, res)

	caches := cache.NewManager()
	caches.Register(dashboards.Cache())
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Records:    records,
		Dashboards: dashboards,
		Importer:   ofx.NewParser(),
		Logger:     logger,
	}, apphttp.Options{
		UserHeader:         cfg.UserHeader,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	sigCtx, wait := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("Starting fintrack server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"change_feed", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	wait()
	logger.Info("Server stopped gracefully")
}
