package store

import (
	"context"
	"fmt"
)

// Drivers accepted by Open
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// OpenConfig selects and configures a backend
type OpenConfig struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string
	Profile     string
	Quota       int64
}

// Open builds a Store for the configured driver
func Open(ctx context.Context, cfg OpenConfig) (*Store, error) {
	profile := cfg.Profile
	if profile == "" {
		profile = "default"
	}

	var backend Backend
	switch cfg.Driver {
	case "", DriverMemory:
		backend = NewMemoryBackend()
	case DriverSQLite, DriverPostgres:
		dialect, dsn := DialectPostgres, cfg.DatabaseURL
		if cfg.Driver == DriverSQLite {
			dialect, dsn = DialectSQLite, cfg.SQLitePath
		}
		db, err := ConnectSQL(dialect, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
		}
		sqlBackend, err := NewSQLBackend(ctx, db, dialect, profile)
		if err != nil {
			db.Close()
			return nil, err
		}
		backend = sqlBackend
	case DriverRedis:
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		backend = NewRedisBackend(client, profile)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	return New(backend, WithQuota(cfg.Quota)), nil
}
