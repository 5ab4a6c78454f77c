// internal/storage/factory.go
package storage

import (
	"context"
	"fmt"
)

// Config holds storage configuration. The store location is explicit so
// tests can run against isolated per-test databases.
type Config struct {
	Driver string // "sqlite", "postgres"

	// SQLite
	SQLitePath string

	// Postgres
	PostgresDSN string

	// Dimension of indexed vectors (feature.Dimension for the current
	// recipe).
	Dimension int
}

// New creates a Storage implementation based on config
func New(ctx context.Context, cfg Config) (Storage, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}

	switch cfg.Driver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		return NewSQLite(cfg.SQLitePath, cfg.Dimension)

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		return NewPostgres(ctx, cfg.PostgresDSN, cfg.Dimension)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
