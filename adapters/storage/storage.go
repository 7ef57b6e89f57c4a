// Package storage persists campaigns and contacts.
// Supports multiple backends: memory, file, SQLite and PostgreSQL.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filmscope/core/campaign"
	"filmscope/core/contacts"
	"filmscope/internal/config"
	"filmscope/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"

	// BackendNone runs without a datastore
	BackendNone Backend = "none"
)

// ErrNoDatastore is returned by StoreFactory for BackendNone
var ErrNoDatastore = errors.Config("No datastore is configured.")

// Store is the storage interface
type Store interface {
	campaign.Repository
	contacts.Store

	// Close releases the backend's resources
	Close() error
}

// nowFunc returns the current time truncated to microseconds so that
// timestamps survive a round trip through every backend unchanged.
func nowFunc() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func notFound(id string) error {
	return errors.NotFound("campaign", id).WithContext("id", id)
}

// StoreFactory creates a store for the configured backend
func StoreFactory(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(cfg.Backend))) {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		path := cfg.Path
		if path == "" {
			path = ".filmscope"
		}
		return NewFileStore(path)
	case BackendSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			path := cfg.Path
			if path == "" {
				path = ".filmscope"
			}
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, errors.Storage("failed to create data directory", err)
			}
			dsn = SQLiteDSN(filepath.Join(path, "filmscope.db"))
		}
		return NewSQLStore(ctx, BackendSQLite, dsn, cfg.MaxOpenConns)
	case BackendNone:
		return nil, ErrNoDatastore
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, errors.Config("A database URL is required for the postgres backend.")
		}
		return NewSQLStore(ctx, BackendPostgres, cfg.DSN, cfg.MaxOpenConns)
	default:
		return nil, errors.NotSupported(fmt.Sprintf("storage backend %q", cfg.Backend))
	}
}
