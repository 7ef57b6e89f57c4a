package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "filmscope.json")

	cfg := Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Gemini.Timeout = 5 * time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", loaded.Storage.Backend)
	assert.Equal(t, 5*time.Second, loaded.Gemini.Timeout)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("FILMSCOPE_STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/filmscope")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FILMSCOPE_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Equal(t, "postgres://localhost/filmscope", cfg.Storage.DSN)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestAPIKeyIsNeverSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	cfg := Default()
	cfg.Gemini.APIKey = "secret"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestLoadDotEnvMissingFileIsNoop(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL=from-file\n"), 0o644))
	t.Setenv("GEMINI_MODEL", "from-process")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-process", os.Getenv("GEMINI_MODEL"))
}
