package history

import (
	"fmt"
	"log/slog"
	"strings"

	"wrkbench/internal/benchmark"
)

// StoreConfig holds configuration for the history backend.
type StoreConfig struct {
	Backend string // "file", "sqlite" or "postgres"
	Dir     string // storage directory for the file backend
	Path    string // database file for the sqlite backend
	DSN     string // connection string for the postgres backend
	Logger  *slog.Logger
}

// NewStore creates a history store for the configured backend. The file
// backend is the default.
func NewStore(cfg StoreConfig) (benchmark.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		if cfg.Dir == "" {
			cfg.Dir = ".wrkbench-history"
		}
		return NewFileStore(cfg.Dir, cfg.Logger), nil
	case "sqlite", "sqlite3":
		if cfg.Path == "" {
			cfg.Path = ".wrkbench.db"
		}
		return NewSQLiteStore(cfg.Path, cfg.Logger)
	case "postgres", "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return NewPostgresStore(cfg.DSN, cfg.Logger)
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.Backend)
	}
}
