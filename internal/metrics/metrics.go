// Package metrics exposes Prometheus collectors for the search pipeline and
// a health snapshot for the JSON stats endpoint.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newslens"

type Metrics struct {
	registry *prometheus.Registry

	SearchRequests   *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	Articles         *prometheus.CounterVec
	Analyses         *prometheus.CounterVec
	EnrichUnchanged  prometheus.Counter
	ExternalCalls    *prometheus.CounterVec
	ExternalDuration *prometheus.HistogramVec
	SearchCache      *prometheus.CounterVec

	mu sync.RWMutex

	// Snapshot
	TotalRequests         int64
	FailedRequests        int64
	FallbackAnalyses      int64
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64
	LastRunTime           time.Time
	LastErrorTime         time.Time
	LastError             string
	IsHealthy             bool
	StartTime             time.Time
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry:  reg,
		IsHealthy: true,
		StartTime: time.Now(),

		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by outcome",
		}, []string{"status"}),

		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end search pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),

		Articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_total",
			Help:      "Articles seen at each pipeline stage",
		}, []string{"stage"}),

		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses produced, by origin",
		}, []string{"origin"}),

		EnrichUnchanged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrich_unchanged_total",
			Help:      "Analyses returned without enrichment",
		}),

		ExternalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_calls_total",
			Help:      "Calls to external services, by service and outcome",
		}, []string{"service", "status"}),

		ExternalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_call_duration_seconds",
			Help:      "Duration of external service calls including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),

		SearchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search cache lookups by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SearchRequests,
		m.PipelineDuration,
		m.Articles,
		m.Analyses,
		m.EnrichUnchanged,
		m.ExternalCalls,
		m.ExternalDuration,
		m.SearchCache,
	)
	return m
}

var Global = New()

// Handler serves the Prometheus text exposition for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordArticles(stage string, n int) {
	m.Articles.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) RecordAnalysis(origin string, enriched bool) {
	m.Analyses.WithLabelValues(origin).Inc()
	if !enriched {
		m.EnrichUnchanged.Inc()
	}
	if origin == "fallback" {
		m.mu.Lock()
		m.FallbackAnalyses++
		m.mu.Unlock()
	}
}

func (m *Metrics) RecordExternalCall(service string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ExternalCalls.WithLabelValues(service, status).Inc()
	m.ExternalDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SearchCache.WithLabelValues(result).Inc()
}

// RecordRequest records a finished pipeline run.
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SearchRequests.WithLabelValues(status).Inc()
	m.PipelineDuration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.LastRunTime = time.Now()
	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)

	if err != nil {
		m.FailedRequests++
		m.LastError = err.Error()
		m.LastErrorTime = m.LastRunTime
		return
	}
	m.IsHealthy = true
}

func (m *Metrics) SetUnhealthy(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsHealthy = false
	m.LastError = reason
	m.LastErrorTime = time.Now()
}

func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.StartTime)
}

func (m *Metrics) GetStats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]any{
		"total_requests":             m.TotalRequests,
		"failed_requests":            m.FailedRequests,
		"fallback_analyses":          m.FallbackAnalyses,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
		"uptime_seconds":             time.Since(m.StartTime).Seconds(),
	}
	if !m.LastRunTime.IsZero() {
		stats["last_run_time"] = m.LastRunTime.Format(time.RFC3339)
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
