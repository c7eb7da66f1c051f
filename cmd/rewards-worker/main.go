package main

import (
	"context"
	"os"
	"time"

	"rewards/internal/amqp"
	"rewards/internal/backend"
	"rewards/internal/cli"
	applog "rewards/internal/log"
	"rewards/internal/services"
	"rewards/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	if err := backendCfg.ValidateForIngest(); err != nil {
		logger.Error("Backend cannot serve the ingest worker", applog.FieldError, err, applog.FieldBackend, backendCfg.Type)
		os.Exit(1)
	}

	be, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, backendCfg.Type)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		be.Close()
		os.Exit(1)
	}

	ingest := services.NewTransactionService(be.Writer, nil)
	w := worker.NewIngestWorker(amqpClient, ingest, cfg.WorkerStatsInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting rewards-worker", "queue", cfg.AMQPQueue, applog.FieldBackend, be.Type)
	runErr := w.Run(ctx)

	if err := amqpClient.Close(); err != nil {
		logger.Warn("AMQP close error", applog.FieldError, err)
	}
	if err := be.Close(); err != nil {
		logger.Warn("Backend close error", applog.FieldError, err)
	}
	if runErr != nil {
		logger.Error("Ingest worker failed", applog.FieldError, runErr)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
