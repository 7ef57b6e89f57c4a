// Package metrics holds the Prometheus collectors exported by filmscope.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all collectors on a private prometheus.Registry
type Registry struct {
	reg *prometheus.Registry

	// HTTPRequests counts handled requests by route, method and status
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency by route
	HTTPDuration *prometheus.HistogramVec

	// AICalls counts generative-AI calls by outcome
	AICalls *prometheus.CounterVec

	// AIDuration observes generative-AI latency
	AIDuration prometheus.Histogram

	// Allocations counts computed budget plans by goal
	Allocations *prometheus.CounterVec

	// CampaignOps counts datastore operations by op and result
	CampaignOps *prometheus.CounterVec
}

// NewRegistry creates a registry with every collector registered
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmscope_http_requests_total",
				Help: "Total HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filmscope_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		AICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmscope_ai_calls_total",
				Help: "Generative-AI calls by outcome",
			},
			[]string{"outcome"},
		),
		AIDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "filmscope_ai_call_duration_seconds",
				Help:    "Generative-AI call latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		Allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmscope_allocations_total",
				Help: "Budget plans computed by goal",
			},
			[]string{"goal"},
		),
		CampaignOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmscope_campaign_ops_total",
				Help: "Campaign datastore operations by op and result",
			},
			[]string{"op", "result"},
		),
	}

	r.reg.MustRegister(
		r.HTTPRequests,
		r.HTTPDuration,
		r.AICalls,
		r.AIDuration,
		r.Allocations,
		r.CampaignOps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one handled request
func (r *Registry) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveAI records one generative-AI call
func (r *Registry) ObserveAI(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.AICalls.WithLabelValues(outcome).Inc()
	r.AIDuration.Observe(elapsed.Seconds())
}

// ObserveAllocation records one computed plan
func (r *Registry) ObserveAllocation(goal string) {
	if r == nil {
		return
	}
	r.Allocations.WithLabelValues(goal).Inc()
}

// ObserveCampaignOp records one datastore operation
func (r *Registry) ObserveCampaignOp(op string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.CampaignOps.WithLabelValues(op, result).Inc()
}
