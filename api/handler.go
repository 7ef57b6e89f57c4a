package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"filmscope/adapters/storage"
	"filmscope/core/budget"
	"filmscope/core/campaign"
	"filmscope/core/contacts"
	"filmscope/internal/errors"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sampleNotice = "No datastore is configured. Displaying sample data."
)

var errNoDatastore = storage.ErrNoDatastore

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, map[string]string{
		"version":     s.version,
		"engine":      "filmscope",
		"api_version": "v1",
	}, http.StatusOK)
}

// handleAllocate handles POST /allocate
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AllocateRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// lenient=true degrades bad input to zero budget / one screening
	// instead of rejecting it.
	var in budget.Input
	if lenient, _ := strconv.ParseBool(r.URL.Query().Get("lenient")); lenient {
		in = budget.Coerce(req)
	} else {
		var err error
		if in, err = budget.ParseForm(req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	// Allocation is pure; no error path past validation
	plan := budget.Allocate(in)
	s.deps.Metrics.ObserveAllocation(plan.Goal.String())

	s.writeJSON(w, r, AllocateResponse{
		Plan: plan,
		Metadata: &ResponseMetadata{
			InputHash:     computeInputHash(in),
			EngineVersion: s.version,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handleTables handles GET /allocation-tables
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, TablesResponse{
		Goals:  budget.Goals,
		Tables: budget.Tables(),
	}, http.StatusOK)
}

// handleAnalyze handles POST /analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	analysis, err := s.deps.Analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, AnalyzeResponse{
		Analysis:  analysis,
		Interests: analysis.InterestsCSV(),
		Behaviors: analysis.BehaviorsCSV(),
	}, http.StatusOK)
}

// handleListCampaigns handles GET /campaigns
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	if s.deps.Campaigns == nil {
		samples := campaign.Samples()
		s.writeJSON(w, r, CampaignListResponse{Campaigns: samples, Count: len(samples), Notice: sampleNotice}, http.StatusOK)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.deps.Campaigns.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, CampaignListResponse{Campaigns: list, Count: len(list)}, http.StatusOK)
}

func parseFilter(r *http.Request) (campaign.Filter, error) {
	q := r.URL.Query()
	f := campaign.Filter{
		Platform: campaign.Platform(strings.ToLower(q.Get("platform"))),
		Status:   campaign.Status(q.Get("status")),
	}

	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, errors.Newf(errors.TypeInput, "%s must be a non-negative integer.", name)
		}
		*dst = n
	}
	return f, nil
}

// handleCreateCampaign handles POST /campaigns
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	if s.deps.Campaigns == nil {
		s.writeError(w, r, errNoDatastore)
		return
	}

	var c campaign.Campaign
	if err := s.parseJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = ""

	saved, msg, err := s.deps.Campaigns.Save(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, CampaignResponse{Campaign: saved, Message: msg}, http.StatusCreated)
}

// handleGetCampaign handles GET /campaigns/{id}
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	if s.deps.Campaigns == nil {
		s.writeError(w, r, errNoDatastore)
		return
	}

	c, err := s.deps.Campaigns.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, c, http.StatusOK)
}

// handleUpdateCampaign handles PUT /campaigns/{id}
func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	if s.deps.Campaigns == nil {
		s.writeError(w, r, errNoDatastore)
		return
	}

	var c campaign.Campaign
	if err := s.parseJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = mux.Vars(r)["id"]

	saved, msg, err := s.deps.Campaigns.Save(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, CampaignResponse{Campaign: saved, Message: msg}, http.StatusOK)
}

// handleDeleteCampaign handles DELETE /campaigns/{id}
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if s.deps.Campaigns == nil {
		s.writeError(w, r, errNoDatastore)
		return
	}

	msg, err := s.deps.Campaigns.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, CampaignResponse{Message: msg}, http.StatusOK)
}

// handleCampaignStats handles GET /campaigns/stats
func (s *Server) handleCampaignStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Campaigns == nil {
		s.writeJSON(w, r, campaign.Summarize(campaign.Samples()), http.StatusOK)
		return
	}

	stats, err := s.deps.Campaigns.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, stats, http.StatusOK)
}

// handlePlatforms handles GET /campaigns/platforms
func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	platforms := make(map[campaign.Platform]campaign.PlatformInfo, len(campaign.Platforms))
	for _, p := range campaign.Platforms {
		platforms[p] = p.Info()
	}
	s.writeJSON(w, r, PlatformsResponse{
		Platforms: platforms,
		Types:     campaign.Types,
		Statuses:  campaign.Statuses,
	}, http.StatusOK)
}

// handleListContacts handles GET /contacts
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	if s.deps.Contacts == nil {
		s.writeError(w, r, errNoDatastore)
		return
	}

	list, err := s.deps.Contacts.ListContacts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, map[string]interface{}{
		"contacts": list,
		"count":    len(list),
	}, http.StatusOK)
}

// handleImportContacts handles POST /contacts/import. The body is a CSV
// document, or an XLSX workbook when ?format=xlsx or the content type
// says so. ?mode=append keeps the existing list.
func (s *Server) handleImportContacts(w http.ResponseWriter, r *http.Request) {
	if s.deps.Contacts == nil {
		s.writeError(w, r, errNoDatastore)
		return
	}
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.TypeInput, "Could not read the request body.", err))
		return
	}

	var result *contacts.ImportResult
	if importFormat(r) == "xlsx" {
		result, err = contacts.ImportXLSX(bytes.NewReader(body))
	} else {
		result, err = contacts.ImportCSV(bytes.NewReader(body))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if result.AllRejected() {
		s.requestLogger(r).Warn("contact import rejected",
			zap.Int("rejected", len(result.Errors)))
		s.writeJSON(w, r, ContactImportResponse{
			Total:   result.Total,
			Errors:  result.Errors,
			Message: "No rows could be imported; the contact list was left unchanged.",
		}, http.StatusBadRequest)
		return
	}

	list := result.Contacts
	if r.URL.Query().Get("mode") == "append" {
		existing, err := s.deps.Contacts.ListContacts(ctx)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		list = append(existing, list...)
	}
	if err := s.deps.Contacts.ReplaceContacts(ctx, list); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.requestLogger(r).Info("contacts imported",
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Errors)))

	s.writeJSON(w, r, ContactImportResponse{
		Total:    result.Total,
		Imported: result.Imported,
		Errors:   result.Errors,
	}, http.StatusOK)
}

func importFormat(r *http.Request) string {
	if f := strings.ToLower(r.URL.Query().Get("format")); f != "" {
		return f
	}
	if strings.Contains(r.Header.Get("Content-Type"), "spreadsheetml") {
		return "xlsx"
	}
	return "csv"
}

// handleExportContacts handles GET /contacts/export?format=csv|xlsx
func (s *Server) handleExportContacts(w http.ResponseWriter, r *http.Request) {
	if s.deps.Contacts == nil {
		s.writeError(w, r, errNoDatastore)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		s.writeError(w, r, errors.Newf(errors.TypeInput, "Unsupported export format %q.", format))
		return
	}

	list, err := s.deps.Contacts.ListContacts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	contentType := contentTypeCSV
	if format == "xlsx" {
		contentType = contentTypeXLSX
		err = contacts.ExportXLSX(&buf, list)
	} else {
		err = contacts.ExportCSV(&buf, list)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="contacts.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeErrorCode(w, r, string(errors.TypeNotFound), "route not found: "+r.URL.Path, http.StatusNotFound)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeErrorCode(w, r, "METHOD_NOT_ALLOWED", "method not allowed: "+r.Method, http.StatusMethodNotAllowed)
}

// Helpers

func (s *Server) parseJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.Input("Request body is required.")
		}
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.Wrap(errors.TypeInput, "Request body is too large.", err)
		}
		return errors.Wrap(errors.TypeInput, "Invalid JSON: "+err.Error(), err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.requestLogger(r).Warn("failed to encode response", zap.Error(err))
	}
}

// writeError maps err to a status code and writes the error envelope.
// Messages of untyped errors are not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := "internal server error"
	if e, ok := errors.As(err); ok {
		message = e.Message
	}
	if status >= http.StatusInternalServerError {
		s.requestLogger(r).Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.writeErrorCode(w, r, string(errors.TypeOf(err)), message, status)
}

func (s *Server) writeErrorCode(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	s.writeJSON(w, r, ErrorBody{Error: ErrorDetail{Code: code, Message: message}}, status)
}

// statusFor maps error types to HTTP status codes
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch errors.TypeOf(err) {
	case errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeConfig:
		return http.StatusServiceUnavailable
	case errors.TypeNetwork:
		return http.StatusBadGateway
	case errors.TypeNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// computeInputHash hashes the normalised allocation input. Equal inputs
// always produce equal plans, so the hash identifies the plan.
func computeInputHash(in budget.Input) string {
	data, _ := json.Marshal(in.Normalize())
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
