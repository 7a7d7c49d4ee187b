// Package metrics provides Prometheus metrics for the dormitory score service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	scoreComputations  *prometheus.CounterVec
	totalScore         *prometheus.HistogramVec
	eligibilityLookups *prometheus.CounterVec

	// Catalog
	catalogReads     *prometheus.CounterVec
	catalogFallbacks *prometheus.CounterVec
	cacheResults     *prometheus.CounterVec
	revalidations    *prometheus.CounterVec
	noticesCrawled   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dorm",
		subsystem:        "score",
		histogramBuckets: prometheus.DefBuckets,
		scoreBuckets:     prometheus.LinearBuckets(0, 10, 11),
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoreComputations = m.counterVec("computations_total",
		"Total number of score computations by mode and level", "mode", "level")

	m.totalScore = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "total_points",
		Help:        "Distribution of computed total scores",
		Buckets:     m.scoreBuckets,
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.eligibilityLookups = m.counterVec("eligibility_lookups_total",
		"Total number of eligibility lookups", "gender", "student_type", "outcome")

	m.catalogReads = m.counterVec("catalog_reads_total",
		"Catalog reads by resource and the source that served them", "resource", "source")

	m.catalogFallbacks = m.counterVec("catalog_fallbacks_total",
		"Catalog reads that fell back to the bundled tables", "resource")

	m.cacheResults = m.counterVec("cache_results_total",
		"Catalog cache lookups by result", "resource", "result")

	m.revalidations = m.counterVec("revalidations_total",
		"Revalidation webhook calls by outcome", "outcome")

	m.noticesCrawled = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notices_crawled_total",
		Help:        "Total number of notices parsed from the notice board",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.rateLimited = m.counterVec("http_rate_limited_total",
		"Requests rejected by the rate limiter", "endpoint")

	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type and severity", "error_type", "severity")
}

// RecordScoreComputation counts one computation and observes its total.
func (m *Manager) RecordScoreComputation(mode, level string, total int) {
	if !m.enabled {
		return
	}
	m.scoreComputations.WithLabelValues(mode, level).Inc()
	m.totalScore.WithLabelValues(mode).Observe(float64(total))
}

// RecordEligibilityLookup counts one lookup; outcome is "none" when nothing matched.
func (m *Manager) RecordEligibilityLookup(gender, studentType string, eligible int) {
	if !m.enabled {
		return
	}
	outcome := "eligible"
	if eligible == 0 {
		outcome = "none"
	}
	m.eligibilityLookups.WithLabelValues(gender, studentType, outcome).Inc()
}

// RecordCatalogRead counts a catalog read served by source.
func (m *Manager) RecordCatalogRead(resource, source string) {
	if m.enabled {
		m.catalogReads.WithLabelValues(resource, source).Inc()
	}
}

// RecordCatalogFallback counts a read that fell back to static data.
func (m *Manager) RecordCatalogFallback(resource string) {
	if m.enabled {
		m.catalogFallbacks.WithLabelValues(resource).Inc()
	}
}

// RecordCacheResult counts a cache hit, miss or error.
func (m *Manager) RecordCacheResult(resource, result string) {
	if m.enabled {
		m.cacheResults.WithLabelValues(resource, result).Inc()
	}
}

// RecordRevalidation counts a webhook call by outcome.
func (m *Manager) RecordRevalidation(outcome string) {
	if m.enabled {
		m.revalidations.WithLabelValues(outcome).Inc()
	}
}

// RecordNoticesCrawled adds n parsed notices.
func (m *Manager) RecordNoticesCrawled(n int) {
	if m.enabled && n > 0 {
		m.noticesCrawled.Add(float64(n))
	}
}

// RecordHTTPRequest records one HTTP request and its duration in milliseconds.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int, durationMs float64) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// RecordRateLimited counts a rejected request.
func (m *Manager) RecordRateLimited(endpoint string) {
	if m.enabled {
		m.rateLimited.WithLabelValues(endpoint).Inc()
	}
}

// RecordError records an error by endpoint and by type/severity.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// Package-level recorders delegate to the global manager.

func RecordScoreComputation(mode, level string, total int) {
	globalManager.RecordScoreComputation(mode, level, total)
}

func RecordEligibilityLookup(gender, studentType string, eligible int) {
	globalManager.RecordEligibilityLookup(gender, studentType, eligible)
}

func RecordCatalogRead(resource, source string) { globalManager.RecordCatalogRead(resource, source) }

func RecordCatalogFallback(resource string) { globalManager.RecordCatalogFallback(resource) }

func RecordCacheResult(resource, result string) { globalManager.RecordCacheResult(resource, result) }

func RecordRevalidation(outcome string) { globalManager.RecordRevalidation(outcome) }

func RecordNoticesCrawled(n int) { globalManager.RecordNoticesCrawled(n) }

func RecordHTTPRequest(endpoint, method string, status int, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, status, durationMs)
}

func RecordRateLimited(endpoint string) { globalManager.RecordRateLimited(endpoint) }

func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
