package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for UpstreamRequests.
const (
	OutcomeSuccess       = "success"
	OutcomeConfigMissing = "config_missing"
	OutcomeTransport     = "transport"
	OutcomeVendor        = "vendor"
	OutcomeResponse      = "response"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interviewgw_upstream_requests_total",
		Help: "Outbound vendor calls by outcome",
	}, []string{"vendor", "operation", "outcome"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interviewgw_upstream_latency_seconds",
		Help:    "Latency of outbound vendor calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"vendor", "operation"})

	FallbackResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interviewgw_fallback_responses_total",
		Help: "Responses served from mock data",
	}, []string{"endpoint", "reason"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "interviewgw_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"breaker"})
)

// ObserveUpstream records one finished vendor call.
func ObserveUpstream(vendor, operation, outcome string, started time.Time) {
	UpstreamRequests.WithLabelValues(vendor, operation, outcome).Inc()
	UpstreamLatency.WithLabelValues(vendor, operation).Observe(time.Since(started).Seconds())
}
