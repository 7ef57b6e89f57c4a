package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCounters(t *testing.T) {
	r := NewRegistry()

	r.ObserveHTTP("/allocate", "POST", 200, 10*time.Millisecond)
	r.ObserveHTTP("/allocate", "POST", 200, 12*time.Millisecond)
	r.ObserveAllocation("awareness")
	r.ObserveAI("error", time.Second)
	r.ObserveCampaignOp("create", nil)
	r.ObserveCampaignOp("create", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.HTTPRequests.WithLabelValues("/allocate", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Allocations.WithLabelValues("awareness")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AICalls.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CampaignOps.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CampaignOps.WithLabelValues("create", "error")))
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveHTTP("/", "GET", 200, time.Millisecond)
		r.ObserveAI("ok", time.Millisecond)
		r.ObserveAllocation("default")
		r.ObserveCampaignOp("list", nil)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.ObserveAllocation("grassroots")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `filmscope_allocations_total{goal="grassroots"} 1`)
}
