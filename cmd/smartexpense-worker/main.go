package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"smartexpense/internal/amqp"
	"smartexpense/internal/backend"
	"smartexpense/internal/cache"
	"smartexpense/internal/cli"
	"smartexpense/internal/log"
	"smartexpense/internal/worker"
)

const (
	dedupeSize = 10000
	dedupeTTL  = time.Hour
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger := cli.SetupLogger(nil, log.ComponentWorker, nil)
		cli.Fatal(logger.Logger, "Invalid configuration", log.FieldError, err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker, nil)

	if cfg.AMQPURL == "" {
		cli.Fatal(logger.Logger, "AMQP_URL is required for the journal worker")
	}

	ctx, stop := cli.SignalContext(context.Background(), logger.Logger)
	defer stop()

	logger.Info("Starting smartexpense-worker", log.FieldOperation, log.OpStartup)

	journal, err := backend.NewJournal(ctx, logger.WithComponent(log.ComponentSheets).Logger, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		cli.Fatal(logger.Logger, "Failed to initialize journal", log.FieldError, err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger.Logger, "Failed to initialize AMQP client", log.FieldError, err)
	}
	defer client.Close()

	mirror := worker.NewMirrorWorker(journal, dedupeSize, dedupeTTL)
	manager := cache.NewManager()
	manager.Register(mirror)
	manager.StartCleanup(5 * time.Minute)
	defer manager.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeExpenseEvents(gctx, mirror.HandleMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		return
	}
	logger.Info("Worker shutdown complete")
}
