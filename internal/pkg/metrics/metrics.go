package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardbrand_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Lookup Metrics
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_lookups_total",
			Help: "Total number of brand lookups by result source",
		},
		[]string{"source"},
	)

	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardbrand_lookup_duration_seconds",
			Help:    "Brand lookup duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"source"},
	)

	LookupBrandsMatched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardbrand_lookup_brands_matched",
			Help:    "Number of brands matched per lookup",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)

	LookupErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_lookup_errors_total",
			Help: "Total number of lookup errors",
		},
		[]string{"stage", "error_type"},
	)

	// Remote Tier Metrics
	RemoteFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_remote_fallbacks_total",
			Help: "Remote lookups that degraded to the local table",
		},
		[]string{"reason"},
	)

	StaleResultsDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardbrand_stale_results_discarded_total",
			Help: "Detection results dropped because the prefix had changed",
		},
	)

	// Cache Metrics
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_cache_requests_total",
			Help: "BIN cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// Access Metrics
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_auth_attempts_total",
			Help: "Client key authentication attempts",
		},
		[]string{"status"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_rate_limited_total",
			Help: "Requests rejected by rate limiting",
		},
		[]string{"scope"},
	)

	// Database Metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardbrand_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardbrand_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation", "table"},
	)

	// System Metrics
	SystemInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cardbrand_system_info",
			Help: "System information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, status int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordLookup records a completed lookup and how many brands it produced
func RecordLookup(source string, matched int, duration float64) {
	LookupsTotal.WithLabelValues(source).Inc()
	LookupDuration.WithLabelValues(source).Observe(duration)
	LookupBrandsMatched.Observe(float64(matched))
}

func RecordLookupError(stage, errorType string) {
	LookupErrors.WithLabelValues(stage, errorType).Inc()
}

func RecordRemoteFallback(reason string) {
	RemoteFallbacksTotal.WithLabelValues(reason).Inc()
}

func RecordStaleResult() {
	StaleResultsDiscarded.Inc()
}

// RecordCache records a cache hit, miss or error
func RecordCache(outcome string) {
	CacheRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordAuthAttempt records client key authentication attempts
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	AuthAttemptsTotal.WithLabelValues(status).Inc()
}

func RecordRateLimited(scope string) {
	RateLimitedTotal.WithLabelValues(scope).Inc()
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, table string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// SetSystemInfo sets system information metrics
func SetSystemInfo(version, goVersion string) {
	SystemInfo.WithLabelValues(version, goVersion).Set(1)
}
