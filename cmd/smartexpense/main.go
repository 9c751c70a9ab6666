package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"smartexpense/internal/analytics"
	"smartexpense/internal/backend"
	"smartexpense/internal/budget"
	"smartexpense/internal/cache"
	"smartexpense/internal/cli"
	apphttp "smartexpense/internal/http"
	"smartexpense/internal/ledger"
	"smartexpense/internal/log"
	"smartexpense/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger := cli.SetupLogger(nil, log.ComponentApp, nil)
		cli.Fatal(logger.Logger, "Invalid configuration", log.FieldError, err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp, nil)

	ctx, stop := cli.SignalContext(context.Background(), logger.Logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger.Logger, "Invalid backend configuration", log.FieldError, err)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger.Logger, "Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	loc := cfg.Location()
	led := ledger.New(res.Store, ledger.WithLocation(loc))
	budgets := budget.New(res.Store)

	var engineOpts []analytics.Option
	if res.Totals != nil {
		engineOpts = append(engineOpts, analytics.WithTotalsCache(res.Totals))
	}
	engine := analytics.New(led, budgets, engineOpts...)
	led.Subscribe(engine)

	manager := cache.NewManager()
	for _, c := range res.Cleaners {
		manager.Register(c)
	}

	switch {
	case res.Publisher != nil:
		led.Subscribe(res.Publisher)
	case cfg.GoogleSpreadsheetID != "":
		// No broker: mirror into the journal from the request path.
		journal, err := backend.NewJournal(ctx, logger.WithComponent(log.ComponentSheets).Logger, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			cli.Fatal(logger.Logger, "Failed to initialize journal", log.FieldError, err)
		}
		mirror := worker.NewMirrorWorker(journal, cfg.CacheSize, time.Hour)
		manager.Register(mirror)
		led.Subscribe(mirror)
	}

	manager.StartCleanup(time.Minute)
	defer manager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, led, budgets, engine,
		map[string]apphttp.Pinger{"store": res.Store},
		apphttp.Options{
			Location:           loc,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting smartexpense server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"cache", cfg.CacheBackend,
			"timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		return
	}
	logger.Info("Server stopped gracefully")
}
