package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartexpense/internal/amqp"
	"smartexpense/internal/cache"
	"smartexpense/internal/core"
	"smartexpense/internal/sheets"
	gsheet "smartexpense/internal/sheets/google"
	"smartexpense/internal/sheets/memory"
	"smartexpense/internal/storage"
)

// totalsKeyPrefix namespaces month totals in a shared Redis.
const totalsKeyPrefix = "smartexpense:"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the store, the month-totals cache and the optional
// AMQP publisher. On error everything opened so far is closed.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}
	closers = append(closers, store.Close)

	result := &BackendResult{Store: store}

	switch config.Cache {
	case MemoryCache:
		lru := cache.NewLRUCache[core.MonthTotals](config.CacheSize, config.CacheTTL)
		result.Totals = lru
		result.Cleaners = append(result.Cleaners, lru)
		f.logger.Info("Initialized in-process totals cache", "size", config.CacheSize, "ttl", config.CacheTTL)
	case RedisCache:
		client, err := cache.NewRedisClient(ctx, config.RedisURL)
		if err != nil {
			_ = cleanup()
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		closers = append(closers, client.Close)
		result.Totals = cache.NewRedisCache[core.MonthTotals](client, totalsKeyPrefix, config.CacheTTL)
		f.logger.Info("Initialized redis totals cache", "ttl", config.CacheTTL)
	case NoCache:
		f.logger.Info("Totals cache disabled")
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
		} else {
			closers = append(closers, client.Close)
			result.Publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = cleanup
	return result, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteStore:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresStore:
		repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL, storage.PostgresOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
		}
		f.logger.Info("Initialized PostgreSQL backend")
		return repo, nil
	case MemoryStore:
		f.logger.Warn("Using in-memory backend, data is lost on restart")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// NewJournal returns the Google Sheets journal when a spreadsheet is
// configured and an in-memory journal otherwise.
func NewJournal(ctx context.Context, logger *slog.Logger, spreadsheetID, sheetName string) (sheets.JournalWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if spreadsheetID == "" {
		logger.Warn("No spreadsheet configured, journal entries are kept in memory")
		return memory.New(), nil
	}
	client, err := gsheet.New(ctx, spreadsheetID, sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets journal: %w", err)
	}
	logger.Info("Initialized Google Sheets journal", "spreadsheet_id", spreadsheetID, "sheet", sheetName)
	return client, nil
}
