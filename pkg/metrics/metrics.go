package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sitecraft", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sitecraft", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sitecraft", Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "sitecraft", Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)

	HistorySaves = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "sitecraft", Name: "site_history_saves_total", Help: "Number of history entries appended."},
	)
	Publishes = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "sitecraft", Name: "site_publishes_total", Help: "Number of publish transitions applied."},
	)
	AssetUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "sitecraft", Name: "asset_uploads_total", Help: "Asset uploads by result (stored, rejected, failed)."},
		[]string{"result"},
	)
	VerificationCodesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "sitecraft", Name: "verification_codes_issued_total", Help: "Number of mobile verification codes issued."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		RateLimitAllowed,
		RateLimitRejected,
		HTTPRequests,
		HTTPDuration,
		HistorySaves,
		Publishes,
		AssetUploads,
		VerificationCodesIssued,
	)
}
