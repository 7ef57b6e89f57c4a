package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmscope/adapters/storage"
	"filmscope/core/audience"
	"filmscope/core/campaign"
	"filmscope/core/contacts"
	"filmscope/internal/config"
	"filmscope/internal/metrics"
)

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(ctx context.Context, prompt string, wantJSON bool) (string, error) {
	return g.text, g.err
}

func testServerConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	return cfg
}

func newTestServer(t *testing.T, gen audience.Generator) (*Server, *metrics.Registry) {
	t.Helper()
	reg := metrics.NewRegistry()
	store := storage.NewMemoryStore()

	deps := Deps{
		Campaigns: campaign.NewService(store, reg),
		Contacts:  store,
		Metrics:   reg,
	}
	if gen != nil {
		deps.Analyzer = audience.NewAnalyzer(gen)
	}
	return NewServer("1.2.3", testServerConfig(), deps), reg
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorBody
	decode(t, rec, &body)
	return body.Error
}

func TestHealthAndVersion(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = do(t, s, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
}

func TestAllocate(t *testing.T) {
	s, reg := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/allocate", map[string]string{
		"totalBudget": "$25,000",
		"goal":        "awareness",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Plan struct {
			TotalBudget string `json:"total_budget"`
			Goal        string `json:"goal"`
			Categories  []struct {
				Category   string `json:"category"`
				Amount     string `json:"amount"`
				Percentage string `json:"percentage"`
			} `json:"categories"`
		} `json:"plan"`
		Metadata ResponseMetadata `json:"metadata"`
	}
	decode(t, rec, &resp)

	assert.Equal(t, "25000", resp.Plan.TotalBudget)
	assert.Equal(t, "awareness", resp.Plan.Goal)
	require.NotEmpty(t, resp.Plan.Categories)
	assert.Len(t, resp.Metadata.InputHash, 64)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Allocations.WithLabelValues("awareness")))

	again := do(t, s, http.MethodPost, "/allocate", map[string]string{"totalBudget": "25000", "goal": "awareness"})
	var second struct {
		Metadata ResponseMetadata `json:"metadata"`
	}
	decode(t, again, &second)
	assert.Equal(t, resp.Metadata.InputHash, second.Metadata.InputHash)
}

func TestAllocateInputHashIgnoresUnusedFields(t *testing.T) {
	s, _ := newTestServer(t, nil)

	hashOf := func(t *testing.T, body map[string]string) string {
		t.Helper()
		rec := do(t, s, http.MethodPost, "/allocate", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Metadata ResponseMetadata `json:"metadata"`
		}
		decode(t, rec, &resp)
		return resp.Metadata.InputHash
	}

	tests := []struct {
		name  string
		a, b  map[string]string
		equal bool
	}{
		{
			name:  "tour ignored for awareness",
			a:     map[string]string{"totalBudget": "25000", "goal": "awareness"},
			b:     map[string]string{"totalBudget": "25000", "goal": "awareness", "grassrootsCities": "NY, LA", "grassrootsScreenings": "3"},
			equal: true,
		},
		{
			name:  "goal spelling",
			a:     map[string]string{"totalBudget": "25000", "goal": "Awareness"},
			b:     map[string]string{"totalBudget": "25000", "goal": " awareness "},
			equal: true,
		},
		{
			name:  "duplicate tour cities",
			a:     map[string]string{"totalBudget": "25000", "goal": "grassroots", "grassrootsCities": "NY, LA"},
			b:     map[string]string{"totalBudget": "25000", "goal": "grassroots", "grassrootsCities": "NY, ny, LA"},
			equal: true,
		},
		{
			name: "tour counted for grassroots",
			a:    map[string]string{"totalBudget": "25000", "goal": "grassroots", "grassrootsCities": "NY"},
			b:    map[string]string{"totalBudget": "25000", "goal": "grassroots", "grassrootsCities": "NY, LA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := hashOf(t, tt.a), hashOf(t, tt.b)
			if tt.equal {
				assert.Equal(t, a, b)
			} else {
				assert.NotEqual(t, a, b)
			}
		})
	}
}

func TestAllocateValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    interface{}
		status  int
		message string
	}{
		{"empty body", nil, http.StatusBadRequest, "Request body is required."},
		{"bad json", "{", http.StatusBadRequest, ""},
		{"missing budget", map[string]string{"goal": "awareness"}, http.StatusBadRequest, "Please enter a total budget."},
		{"not a number", map[string]string{"totalBudget": "lots"}, http.StatusBadRequest, "Total budget must be a number."},
		{"negative", map[string]string{"totalBudget": "-5"}, http.StatusBadRequest, "Total budget cannot be negative."},
		{"tour without cities", map[string]string{"totalBudget": "100", "goal": "grassroots"}, http.StatusBadRequest, "Please list at least one city for the grassroots tour."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/allocate", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			e := errorCode(t, rec)
			assert.Equal(t, "INPUT_ERROR", e.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, e.Message)
			}
		})
	}
}

func TestAllocateLenient(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/allocate?lenient=true", map[string]string{"totalBudget": "lots", "goal": "grassroots"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AllocateResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Plan.TotalBudget.IsZero())
	assert.Empty(t, resp.Plan.Categories)
}

func TestAllocateBodyTooLarge(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxBodySize = 16
	s := NewServer("test", cfg, Deps{})

	rec := do(t, s, http.MethodPost, "/allocate", map[string]string{"totalBudget": "25000", "goal": "awareness"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAllocationTables(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/allocation-tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Goals  []string                   `json:"goals"`
		Tables map[string]json.RawMessage `json:"tables"`
	}
	decode(t, rec, &resp)
	assert.Contains(t, resp.Goals, "grassroots")
	assert.Len(t, resp.Tables, len(resp.Goals))
}

func TestAnalyze(t *testing.T) {
	gen := stubGenerator{text: `{"confidence": 75, "targetDemographic": "Adults (25-34)", "contentPillars": ["a"], "metaTargeting": {"interests": ["Horror films", "A24"], "behaviors": ["Moviegoers"]}}`}
	s, _ := newTestServer(t, gen)

	rec := do(t, s, http.MethodPost, "/analyze", map[string]string{"title": "The Hollow", "genre": "Horror"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	decode(t, rec, &resp)
	assert.Equal(t, 75.0, resp.Analysis.Confidence)
	assert.Equal(t, "Horror films, A24", resp.Interests)
	assert.Equal(t, "Moviegoers", resp.Behaviors)
}

func TestAnalyzeErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		rec := do(t, s, http.MethodPost, "/analyze", map[string]string{"title": "x"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Gemini API key is not configured.", errorCode(t, rec).Message)
	})

	t.Run("missing title", func(t *testing.T) {
		s, _ := newTestServer(t, stubGenerator{text: "{}"})
		rec := do(t, s, http.MethodPost, "/analyze", map[string]string{"genre": "Horror"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		s, _ := newTestServer(t, stubGenerator{err: fmt.Errorf("connection reset")})
		rec := do(t, s, http.MethodPost, "/analyze", map[string]string{"title": "x"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Failed to get analysis from AI.", errorCode(t, rec).Message)
	})
}

func TestCampaignLifecycle(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/campaigns", map[string]string{
		"title":    "Teaser",
		"content":  "Watch the teaser",
		"platform": "youtube",
		"type":     "Video",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created CampaignResponse
	decode(t, rec, &created)
	assert.Equal(t, campaign.MsgCreated, created.Message)
	id := created.Campaign.ID
	require.NotEmpty(t, id)
	assert.Equal(t, campaign.StatusDraft, created.Campaign.Status)

	rec = do(t, s, http.MethodGet, "/campaigns/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPut, "/campaigns/"+id, map[string]string{
		"title":    "Teaser",
		"content":  "Watch the teaser",
		"platform": "youtube",
		"type":     "Video",
		"status":   "Active",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated CampaignResponse
	decode(t, rec, &updated)
	assert.Equal(t, campaign.MsgUpdated, updated.Message)
	assert.Equal(t, campaign.StatusActive, updated.Campaign.Status)

	rec = do(t, s, http.MethodGet, "/campaigns/stats", nil)
	var stats campaign.Stats
	decode(t, rec, &stats)
	assert.Equal(t, campaign.Stats{Total: 1, Active: 1}, stats)

	rec = do(t, s, http.MethodGet, "/campaigns?platform=youtube&limit=10", nil)
	var list CampaignListResponse
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)
	assert.Empty(t, list.Notice)

	rec = do(t, s, http.MethodDelete, "/campaigns/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), campaign.MsgDeleted)

	rec = do(t, s, http.MethodGet, "/campaigns/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec).Code)
}

func TestCampaignValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/campaigns", map[string]string{"title": "only a title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title and Content are required.", errorCode(t, rec).Message)

	rec = do(t, s, http.MethodGet, "/campaigns?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignsWithoutDatastore(t *testing.T) {
	s := NewServer("test", testServerConfig(), Deps{})

	rec := do(t, s, http.MethodGet, "/campaigns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list CampaignListResponse
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, sampleNotice, list.Notice)

	rec = do(t, s, http.MethodPost, "/campaigns", map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestContactsImportExport(t *testing.T) {
	s, _ := newTestServer(t, nil)

	csvBody := "name,email,followers\n\"Doe, Jane\",jane@example.com,\"1,500\"\n,missing@example.com,\n"
	rec := do(t, s, http.MethodPost, "/contacts/import", csvBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var imp ContactImportResponse
	decode(t, rec, &imp)
	assert.Equal(t, 2, imp.Total)
	assert.Equal(t, 1, imp.Imported)
	require.Len(t, imp.Errors, 1)
	assert.Equal(t, 3, imp.Errors[0].Row)

	rec = do(t, s, http.MethodGet, "/contacts/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"Doe, Jane",jane@example.com,,,,1500,`)

	rec = do(t, s, http.MethodGet, "/contacts/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	res, err := contacts.ImportXLSX(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Doe, Jane", res.Contacts[0].Name)

	rec = do(t, s, http.MethodPost, "/contacts/import?mode=append", "name\nSam\n")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/contacts", nil)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	rec = do(t, s, http.MethodGet, "/contacts/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/contacts/import", "email\nx@example.com\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactsImportAllRowsRejectedKeepsList(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"replace missing names", "/contacts/import", "name,email\n,x@example.com\n"},
		{"replace bad followers", "/contacts/import", "name,followers\nSam,1e300\n"},
		{"append bad email", "/contacts/import?mode=append", "name,email\nSam,not-an-address\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, nil)

			rec := do(t, s, http.MethodPost, "/contacts/import", "name,email\nJane,jane@example.com\n")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = do(t, s, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var imp ContactImportResponse
			decode(t, rec, &imp)
			assert.Equal(t, 1, imp.Total)
			assert.Zero(t, imp.Imported)
			require.Len(t, imp.Errors, 1)
			assert.Equal(t, 2, imp.Errors[0].Row)
			assert.NotEmpty(t, imp.Message)

			rec = do(t, s, http.MethodGet, "/contacts", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var list struct {
				Contacts []contacts.Contact `json:"contacts"`
				Count    int                `json:"count"`
			}
			decode(t, rec, &list)
			assert.Equal(t, 1, list.Count)
			require.Len(t, list.Contacts, 1)
			assert.Equal(t, "Jane", list.Contacts[0].Name)
		})
	}
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/allocate", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutingErrors(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/allocate", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecovery(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := do(t, s, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, reg := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/health", nil)
	do(t, s, http.MethodGet, "/campaigns/"+"abc", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("/health", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("/campaigns/{id}", "GET", "404")))

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "filmscope_http_requests_total")
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", nil)
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "trace-42", rec.Header().Get(RequestIDHeader))
}
