package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting fintrack-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	amqpURL, exchange, queue := cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue
	// The worker only consumes; the backend is opened without a publisher.
	cfg.AMQPURL = ""

	ctx := context.Background()
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	writer, remote, err := cli.SheetsWriter(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	if remote {
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Warn("Google Sheets not configured, mirroring to memory only")
	}

	client, err := amqp.NewClient(amqpURL, exchange, queue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	mirror := worker.NewMirrorWorker(res.Store, writer)

	sigCtx, wait := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	go func() {
		err := client.ConsumeRecordChanges(sigCtx, mirror.HandleRecordChange)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	wait()
	logger.Info("Worker stopped gracefully")
}
