// Package api - Thin HTTP layer over the FilmScope core packages.
// The API is ONLY responsible for input ingestion, orchestration and
// output serialization. Budget and audience logic live in core/.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"filmscope/core/audience"
	"filmscope/core/campaign"
	"filmscope/core/contacts"
	"filmscope/internal/config"
	"filmscope/internal/logging"
	"filmscope/internal/metrics"
)

// Deps are the services the server dispatches to. A nil Campaigns or
// Contacts disables those endpoints; a nil Analyzer makes /analyze
// report that the AI is not configured.
type Deps struct {
	Analyzer  *audience.Analyzer
	Campaigns *campaign.Service
	Contacts  contacts.Store
	Metrics   *metrics.Registry
}

// Server is the API server
type Server struct {
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	config  config.ServerConfig
	version string
	deps    Deps
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(version string, cfg config.ServerConfig, deps Deps) *Server {
	if deps.Analyzer == nil {
		deps.Analyzer = audience.NewAnalyzer(nil)
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 5 * 1024 * 1024
	}

	s := &Server{
		router:  mux.NewRouter(),
		config:  cfg,
		version: version,
		deps:    deps,
		logger:  logging.Named("api"),
	}

	s.registerRoutes()

	// Apply middleware, innermost first
	var h http.Handler = s.router
	h = s.bodyLimitMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)
	h = s.requestIDMiddleware(h)
	s.handler = h

	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	// Supporting endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Budget
	r.HandleFunc("/allocate", s.handleAllocate).Methods(http.MethodPost)
	r.HandleFunc("/allocation-tables", s.handleTables).Methods(http.MethodGet)

	// Audience
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)

	// Campaigns; static paths before {id}
	r.HandleFunc("/campaigns", s.handleListCampaigns).Methods(http.MethodGet)
	r.HandleFunc("/campaigns", s.handleCreateCampaign).Methods(http.MethodPost)
	r.HandleFunc("/campaigns/stats", s.handleCampaignStats).Methods(http.MethodGet)
	r.HandleFunc("/campaigns/platforms", s.handlePlatforms).Methods(http.MethodGet)
	r.HandleFunc("/campaigns/{id}", s.handleGetCampaign).Methods(http.MethodGet)
	r.HandleFunc("/campaigns/{id}", s.handleUpdateCampaign).Methods(http.MethodPut)
	r.HandleFunc("/campaigns/{id}", s.handleDeleteCampaign).Methods(http.MethodDelete)

	// Contacts
	r.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	r.HandleFunc("/contacts/import", s.handleImportContacts).Methods(http.MethodPost)
	r.HandleFunc("/contacts/export", s.handleExportContacts).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("address", s.config.Address))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
