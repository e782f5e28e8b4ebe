// Package cache stores computed threads and rendered artifacts.
//
// Computing a thread is the expensive step of threadart, while replaying a
// stored peg sequence onto a raster takes milliseconds. The pipeline
// therefore caches thread documents keyed by the source image hash and the
// parameters that influence selection, and rendered artifacts keyed by the
// thread hash and display options.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: go-redis, for servers sharing a cache
//   - [MongoCache]: one document per entry in a collection with a TTL index
//   - [NullCache]: stores nothing
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry. A miss is reported with
// ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects a backend.
type Config struct {
	Backend       string
	Dir           string // file
	RedisAddr     string // redis
	MongoURI      string // mongo
	MongoDatabase string // mongo
}

// Open connects to the backend named in cfg.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendFile, "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache needs a directory")
		}
		fc, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		rc, err := NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendMongo:
		mc, err := NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
