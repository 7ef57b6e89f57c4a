// Package config provides configuration management.
package config

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"filmscope/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Storage contains campaign/contact datastore configuration
	Storage StorageConfig `json:"storage"`

	// Gemini contains generative-AI configuration
	Gemini GeminiConfig `json:"gemini"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Address to listen on
	Address string `json:"address" env:"FILMSCOPE_ADDR"`

	// ReadTimeout for requests
	ReadTimeout time.Duration `json:"read_timeout" env:"FILMSCOPE_READ_TIMEOUT"`

	// WriteTimeout for responses
	WriteTimeout time.Duration `json:"write_timeout" env:"FILMSCOPE_WRITE_TIMEOUT"`

	// MaxBodySize limits request body size
	MaxBodySize int64 `json:"max_body_size" env:"FILMSCOPE_MAX_BODY_SIZE"`

	// EnableCORS enables CORS headers
	EnableCORS bool `json:"enable_cors" env:"FILMSCOPE_ENABLE_CORS"`

	// AllowedOrigins for CORS
	AllowedOrigins []string `json:"allowed_origins" env:"FILMSCOPE_ALLOWED_ORIGINS" envSeparator:","`
}

// StorageConfig selects and configures the datastore
type StorageConfig struct {
	// Backend is one of memory, file, sqlite, postgres, none
	Backend string `json:"backend" env:"FILMSCOPE_STORAGE"`

	// Path is the data directory for the file and sqlite backends
	Path string `json:"path" env:"FILMSCOPE_STORAGE_PATH"`

	// DSN is the postgres connection string
	DSN string `json:"dsn,omitempty" env:"DATABASE_URL"`

	// MaxOpenConns caps the SQL connection pool
	MaxOpenConns int `json:"max_open_conns" env:"FILMSCOPE_MAX_OPEN_CONNS"`
}

// GeminiConfig configures the generative-AI client
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API
	APIKey string `json:"-" env:"GEMINI_API_KEY"`

	// Model is the generation model name
	Model string `json:"model" env:"GEMINI_MODEL"`

	// BaseURL overrides the API endpoint
	BaseURL string `json:"base_url,omitempty" env:"GEMINI_BASE_URL"`

	// Timeout bounds a single generation call
	Timeout time.Duration `json:"timeout" env:"GEMINI_TIMEOUT"`

	// RequestsPerSecond limits outbound calls
	RequestsPerSecond float64 `json:"requests_per_second" env:"GEMINI_RPS"`

	// Burst is the limiter burst size
	Burst int `json:"burst" env:"GEMINI_BURST"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default CLI output format
	DefaultFormat string `json:"default_format" env:"FILMSCOPE_FORMAT"`

	// CurrencySymbol prefixes amounts in CLI output
	CurrencySymbol string `json:"currency_symbol" env:"FILMSCOPE_CURRENCY_SYMBOL"`

	// ShowDetails shows per-category breakdowns
	ShowDetails bool `json:"show_details"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".filmscope")

	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Address:        ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxBodySize:    5 * 1024 * 1024,
			EnableCORS:     true,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend:      "memory",
			Path:         dataDir,
			MaxOpenConns: 10,
		},
		Gemini: GeminiConfig{
			Model:             "gemini-2.0-flash",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Output: OutputConfig{
			DefaultFormat:  "cli",
			CurrencySymbol: "$",
			ShowDetails:    true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() error {
	return env.Parse(c)
}

// LoadDotEnv loads variables from a .env file if one exists.
// Variables already set in the process environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); stderrors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
