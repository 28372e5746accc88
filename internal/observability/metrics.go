package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FixesStored      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "voice_concierge", Name: "location_fixes_stored_total", Help: "Location fixes persisted after the movement filter"})
	FixesDiscarded   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "voice_concierge", Name: "location_fixes_discarded_total", Help: "Location fixes dropped as insignificant movement"})
	AlertsSuppressed = promauto.NewCounter(prometheus.CounterOpts{Namespace: "voice_concierge", Name: "location_alerts_suppressed_total", Help: "Alerts suppressed by the cooldown window"})

	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "voice_concierge", Name: "location_alerts_created_total", Help: "Location alerts persisted, by type"},
		[]string{"alert_type"},
	)
	NotifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "voice_concierge", Name: "notify_failures_total", Help: "Best-effort notification channel failures"},
		[]string{"channel"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "voice_concierge", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voice_concierge",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
