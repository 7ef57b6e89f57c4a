// Package gemini implements audience.Generator on the Google Gemini API.
package gemini

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"filmscope/internal/config"
	"filmscope/internal/errors"
	"filmscope/internal/logging"
	"filmscope/internal/metrics"
)

const defaultModel = "gemini-2.0-flash"

var (
	// ErrNotConfigured is returned when no API key is available
	ErrNotConfigured = errors.Config("Gemini API key is not configured.")

	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = stderrors.New("gemini: no content received")
)

// contentModel is the subset of genai.Models the client uses
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client calls GenerateContent behind a rate limiter and a circuit breaker
type Client struct {
	models  contentModel
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Registry
	logger  *zap.Logger
}

// New creates a client from configuration. It returns ErrNotConfigured
// when cfg has no API key.
func New(ctx context.Context, cfg config.GeminiConfig, reg *metrics.Registry) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to create Gemini client", err)
	}
	return newClient(gc.Models, cfg, reg), nil
}

func newClient(models contentModel, cfg config.GeminiConfig, reg *metrics.Registry) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		models:  models,
		model:   model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(limit, burst),
		breaker: newBreaker("gemini"),
		metrics: reg,
		logger:  logging.Named("gemini"),
	}
}

// newBreaker trips after three consecutive failures or a 5% failure rate
// over at least 20 requests, and probes again after 60s. Calls abandoned
// by the caller do not count against the service.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, context.Canceled)
		},
	}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		if counts.Requests < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
	}
	return gobreaker.NewCircuitBreaker(st)
}

// Model returns the generation model name
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt to the model and returns its text
func (c *Client) Generate(ctx context.Context, prompt string, wantJSON bool) (string, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.ObserveAI("rate_limited", time.Since(start))
		return "", errors.Network("The AI service is busy. Please try again.", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var genCfg *genai.GenerateContentConfig
	if wantJSON {
		genCfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
		if err != nil {
			if stderrors.Is(ctx.Err(), context.Canceled) && !stderrors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("%w: %v", context.Canceled, err)
			}
			return nil, err
		}
		text := ""
		if resp != nil {
			text = resp.Text()
		}
		if strings.TrimSpace(text) == "" {
			return nil, ErrEmptyResponse
		}
		return text, nil
	})
	if err != nil {
		outcome := "error"
		msg := "Failed to get analysis from AI."
		switch {
		case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = "circuit_open"
			msg = "The AI service is temporarily unavailable."
		case stderrors.Is(err, context.Canceled):
			outcome = "cancelled"
			msg = "The AI request was cancelled."
		case stderrors.Is(err, ErrEmptyResponse):
			outcome = "empty"
			msg = "No content received from the AI model."
		}
		c.metrics.ObserveAI(outcome, time.Since(start))
		c.logger.Warn("generate content failed",
			zap.String("model", c.model),
			zap.String("outcome", outcome),
			zap.Error(err))
		return "", errors.Network(msg, err)
	}

	c.metrics.ObserveAI("ok", time.Since(start))
	c.logger.Debug("generate content",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)))
	return out.(string), nil
}
