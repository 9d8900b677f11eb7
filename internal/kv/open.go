package kv

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Options struct {
	Driver         string
	DatabasePath   string
	DatabaseURL    string
	RedisURL       string
	RedisKeyPrefix string
}

// Backend is a Store that can be closed on shutdown.
type Backend interface {
	Store
	io.Closer
}

// Open builds the store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		return OpenSQLite(opts.DatabasePath)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	case DriverRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisKeyPrefix)
	case DriverMemory:
		return nopCloser{NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", opts.Driver)
	}
}

type nopCloser struct {
	*MemoryStore
}

func (nopCloser) Close() error { return nil }
