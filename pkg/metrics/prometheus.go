// Package metrics provides Prometheus metrics for the matchd engine.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
	bytesPerMegabyte       = 1024 * 1024
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Engine metrics
	matchesComputed       prometheus.Counter
	recommendationsServed prometheus.Counter
	searchesRanked        prometheus.Counter
	profileBuilds         prometheus.Counter
	profileFetchFallbacks prometheus.Counter
	scoringLatency        prometheus.Histogram
	enhancerFailures      prometheus.Counter

	// Trust and moderation metrics
	trustChecks      prometheus.Counter
	flagsCreated     *prometheus.CounterVec // labels: type, source
	flagTransitions  prometheus.Counter
	duplicateReports prometheus.Counter
	flagsDismissed   prometheus.Counter
	openFlags        prometheus.Gauge

	// Store gauges
	trackedListings prometheus.Gauge
	trackedProfiles prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry returns the registry holding all service metrics, for
// exposing via promhttp.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "spotnest",
		subsystem:        "matchd",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.matchesComputed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_computed_total",
		Help:      "Total number of match results produced.",
	})
	m.recommendationsServed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_served_total",
		Help:      "Total number of recommendations produced.",
	})
	m.searchesRanked = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "searches_ranked_total",
		Help:      "Total number of search result sets ranked.",
	})
	m.profileBuilds = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_builds_total",
		Help:      "Total number of behavior profiles built.",
	})
	m.profileFetchFallbacks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_fetch_fallbacks_total",
		Help:      "Profile builds that fell back to defaults after a store failure.",
	})
	m.scoringLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_ms",
		Help:      "Per-request scoring latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.enhancerFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enhancer_failures_total",
		Help:      "Text enhancer calls that failed or timed out and were skipped.",
	})

	m.trustChecks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trust_checks_total",
		Help:      "Total number of listing trust checks performed.",
	})
	m.flagsCreated = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flags_created_total",
		Help:      "Moderation flags created, by flag type and source.",
	}, []string{"type", "source"})
	m.flagTransitions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flag_transitions_total",
		Help:      "Flag status transitions applied.",
	})
	m.duplicateReports = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_reports_total",
		Help:      "User reports rejected because one is already pending.",
	})
	m.flagsDismissed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flags_dismissed_total",
		Help:      "Flags dismissed via the batched dismiss-all operation.",
	})
	m.openFlags = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "open_flags",
		Help:      "Flags currently in pending or reviewing status.",
	})

	m.trackedListings = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_listings",
		Help:      "Listings currently held by the listing store.",
	})
	m.trackedProfiles = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_profiles",
		Help:      "Users with preference records in the profile store.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds by endpoint.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_mb",
		Help:      "Heap memory in use, in megabytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Number of live goroutines.",
	})
}

// Package-level helpers operating on the global manager.

// RecordMatchesComputed adds n produced matches.
func RecordMatchesComputed(n int) {
	if n > 0 {
		globalManager.matchesComputed.Add(float64(n))
	}
}

// RecordRecommendationsServed adds n produced recommendations.
func RecordRecommendationsServed(n int) {
	if n > 0 {
		globalManager.recommendationsServed.Add(float64(n))
	}
}

// RecordSearchRanked counts one ranked search result set.
func RecordSearchRanked() {
	globalManager.searchesRanked.Inc()
}

// RecordProfileBuild counts one behavior profile build.
func RecordProfileBuild() {
	globalManager.profileBuilds.Inc()
}

// RecordProfileFetchFallback counts a profile build that degraded to defaults.
func RecordProfileFetchFallback() {
	globalManager.profileFetchFallbacks.Inc()
}

// ObserveScoringLatency records a scoring pass duration in milliseconds.
func ObserveScoringLatency(ms float64) {
	globalManager.scoringLatency.Observe(ms)
}

// RecordEnhancerFailure counts a skipped text enhancement.
func RecordEnhancerFailure() {
	globalManager.enhancerFailures.Inc()
}

// RecordTrustCheck counts one trust check.
func RecordTrustCheck() {
	globalManager.trustChecks.Inc()
}

// RecordFlagCreated counts a created flag by type and source
// ("auto" or "report").
func RecordFlagCreated(flagType, source string) {
	globalManager.flagsCreated.WithLabelValues(flagType, source).Inc()
}

// RecordFlagTransition counts one status transition.
func RecordFlagTransition() {
	globalManager.flagTransitions.Inc()
}

// RecordDuplicateReport counts a rejected duplicate report.
func RecordDuplicateReport() {
	globalManager.duplicateReports.Inc()
}

// RecordFlagsDismissed adds n flags dismissed in one batch.
func RecordFlagsDismissed(n int) {
	if n > 0 {
		globalManager.flagsDismissed.Add(float64(n))
	}
}

// UpdateOpenFlags sets the open (pending/reviewing) flag gauge.
func UpdateOpenFlags(n int) {
	globalManager.openFlags.Set(float64(n))
}

// UpdateTrackedListings sets the listing store gauge.
func UpdateTrackedListings(n int) {
	globalManager.trackedListings.Set(float64(n))
}

// UpdateTrackedProfiles sets the profile store gauge.
func UpdateTrackedProfiles(n int) {
	globalManager.trackedProfiles.Set(float64(n))
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveHTTPRequestDuration records a request duration in milliseconds.
func ObserveHTTPRequestDuration(endpoint string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint).Observe(ms)
}

// UpdateSystemMetrics refreshes the memory and goroutine gauges.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse) / bytesPerMegabyte)
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}
