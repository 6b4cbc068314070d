package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshuakim/sharpline/internal/logger"
)

// Cache stores provider responses for a bounded time
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Purger is implemented by backends that need expired entries removed explicitly
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Backend names accepted by New
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// New opens the configured backend. dsn is the sqlite DSN or the redis URL.
func New(ctx context.Context, backend, dsn string) (Cache, error) {
	switch backend {
	case BackendSQLite:
		return NewSQLite(dsn)
	case BackendRedis:
		return NewRedisFromURL(ctx, dsn)
	case BackendNone, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// Fetch returns the cached value for key, or calls load and caches its result
// for ttl. Cache failures are logged and never fail the call; load errors are
// returned unchanged and nothing is cached.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil || ttl <= 0 {
		return load(ctx)
	}

	log := logger.WithComponent("cache").WithField("key", key)

	if raw, ok, err := c.Get(ctx, key); err != nil {
		log.WithError(err).Warn("Cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		log.Warn("Discarding undecodable cache entry")
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warn("Cache encode failed")
		return v, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.WithError(err).Warn("Cache write failed")
	}
	return v, nil
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Close() error { return nil }
