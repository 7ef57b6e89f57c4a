package api

import (
	"context"

	"go.uber.org/zap"

	"filmscope/adapters/gemini"
	"filmscope/adapters/storage"
	"filmscope/core/audience"
	"filmscope/core/campaign"
	"filmscope/internal/config"
	"filmscope/internal/errors"
	"filmscope/internal/metrics"
)

// NewFromConfig wires the datastore, the Gemini client and metrics from
// cfg into a server. The returned close function releases the datastore.
// A missing Gemini key is not fatal: /analyze then answers 503. The
// "none" storage backend serves sample campaigns.
func NewFromConfig(ctx context.Context, version string, cfg *config.Config) (*Server, func() error, error) {
	reg := metrics.NewRegistry()

	deps := Deps{Metrics: reg}
	closeStore := func() error { return nil }

	store, err := storage.StoreFactory(ctx, cfg.Storage)
	switch {
	case err == nil:
		deps.Campaigns = campaign.NewService(store, reg)
		deps.Contacts = store
		closeStore = store.Close
	case err == storage.ErrNoDatastore:
	default:
		return nil, nil, err
	}

	client, err := gemini.New(ctx, cfg.Gemini, reg)
	switch {
	case err == nil:
		deps.Analyzer = audience.NewAnalyzer(client)
	case errors.IsType(err, errors.TypeConfig):
		deps.Analyzer = audience.NewAnalyzer(nil)
	default:
		_ = closeStore()
		return nil, nil, err
	}

	s := NewServer(version, cfg.Server, deps)
	fields := []zap.Field{
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("datastore", deps.Campaigns != nil),
		zap.Bool("ai_enabled", client != nil),
	}
	if client != nil {
		fields = append(fields, zap.String("model", client.Model()))
	}
	s.logger.Info("server configured", fields...)

	return s, closeStore, nil
}
