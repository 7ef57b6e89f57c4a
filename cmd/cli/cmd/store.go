// Package cmd - datastore helpers
package cmd

import (
	"context"

	"go.uber.org/zap"

	"filmscope/adapters/storage"
	"filmscope/internal/config"
	"filmscope/internal/logging"
)

// openStore opens the configured datastore. The CLI persists to files when
// the memory backend is configured.
func openStore(ctx context.Context) (storage.Store, error) {
	cfg := config.Get().Storage
	if cfg.Backend == "" || storage.Backend(cfg.Backend) == storage.BackendMemory {
		cfg.Backend = string(storage.BackendFile)
	}

	logging.Debug("opening datastore",
		zap.String("backend", cfg.Backend),
		zap.String("path", cfg.Path))

	store, err := storage.StoreFactory(ctx, cfg)
	if err != nil {
		return nil, userError(err)
	}
	return store, nil
}
