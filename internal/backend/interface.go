package backend

import (
	"context"
	"time"

	"smartexpense/internal/amqp"
	"smartexpense/internal/cache"
	"smartexpense/internal/core"
	"smartexpense/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the infrastructure the services are built on. Totals
// is nil when caching is disabled; Publisher is nil when AMQP is not
// configured or could not be reached at start-up.
type BackendResult struct {
	Store     storage.Store
	Totals    cache.Cache[core.MonthTotals]
	Publisher *amqp.Client
	// Cleaners lists in-process caches for cache.Manager.
	Cleaners []cache.Cleaner
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type StoreType

	SQLiteDBPath string
	DatabaseURL  string

	Cache     CacheType
	RedisURL  string
	CacheTTL  time.Duration
	CacheSize int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// StoreType selects the durable store.
type StoreType string

const (
	MemoryStore   StoreType = "memory"
	SQLiteStore   StoreType = "sqlite"
	PostgresStore StoreType = "postgres"
)

func (t StoreType) String() string {
	return string(t)
}

func (t StoreType) IsValid() bool {
	switch t {
	case MemoryStore, SQLiteStore, PostgresStore:
		return true
	default:
		return false
	}
}

// CacheType selects where month totals are cached.
type CacheType string

const (
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
	NoCache     CacheType = "none"
)

func (t CacheType) IsValid() bool {
	switch t {
	case MemoryCache, RedisCache, NoCache:
		return true
	default:
		return false
	}
}
