// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activities_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	RosterOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_roster_operations_total",
			Help: "Roster mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RosterSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activities_roster_size",
			Help: "Current number of participants per activity",
		},
		[]string{"activity"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_side_effect_failures_total",
			Help: "Non-critical audit and notification failures",
		},
		[]string{"kind"},
	)
)

const (
	OutcomeSuccess = "success"
)
