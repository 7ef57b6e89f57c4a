package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmscope/internal/config"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("memory store without AI key", func(t *testing.T) {
		cfg := config.Default()
		cfg.Gemini.APIKey = ""

		s, closeFn, err := NewFromConfig(context.Background(), "test", cfg)
		require.NoError(t, err)
		defer closeFn()

		rec := do(t, s, http.MethodPost, "/campaigns", map[string]string{"title": "Teaser", "content": "Soon"})
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = do(t, s, http.MethodPost, "/analyze", map[string]string{"title": "The Hollow"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = do(t, s, http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no datastore serves samples", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = "none"

		s, closeFn, err := NewFromConfig(context.Background(), "test", cfg)
		require.NoError(t, err)
		defer closeFn()

		rec := do(t, s, http.MethodGet, "/campaigns", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list CampaignListResponse
		decode(t, rec, &list)
		assert.Equal(t, sampleNotice, list.Notice)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = "s3"

		_, _, err := NewFromConfig(context.Background(), "test", cfg)
		assert.Error(t, err)
	})
}
