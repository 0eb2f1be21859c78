// Package monitoring provides Prometheus metrics and OpenTelemetry setup
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reelchef"

// PipelineMetrics records analysis pipeline observations in Prometheus
type PipelineMetrics struct {
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	chunksPerVideo   prometheus.Histogram
	aiCallsTotal     *prometheus.CounterVec
	aiCallDuration   *prometheus.HistogramVec
	aiRetriesTotal   *prometheus.CounterVec
	preScreenResults *prometheus.CounterVec
}

var _ outbound.PipelineMetrics = (*PipelineMetrics)(nil)

// NewPipelineMetrics registers the pipeline collectors on reg
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_run_duration_seconds",
				Help:      "Pipeline run duration in seconds",
				Buckets:   []float64{0.1, 1, 5, 15, 30, 60, 120, 300, 540},
			},
			[]string{"outcome"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_cache_lookups_total",
				Help:      "Analysis cache lookups by result",
			},
			[]string{"result"},
		),
		chunksPerVideo: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "video_chunks",
				Help:      "Number of chunks a video was split into",
				Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
			},
		),
		aiCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_calls_total",
				Help:      "Total number of model calls",
			},
			[]string{"operation", "outcome"},
		),
		aiCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_call_duration_seconds",
				Help:      "Model call duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
		aiRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_retries_total",
				Help:      "Total number of retried model calls",
			},
			[]string{"operation"},
		),
		preScreenResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prescreen_results_total",
				Help:      "Pre-screen classifications by result",
			},
			[]string{"result"},
		),
	}
}

func (m *PipelineMetrics) ObserveRun(outcome string, duration time.Duration) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *PipelineMetrics) ObserveChunks(count int) {
	m.chunksPerVideo.Observe(float64(count))
}

func (m *PipelineMetrics) ObserveAICall(operation, outcome string, duration time.Duration) {
	m.aiCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.aiCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordAIRetry(operation string) {
	m.aiRetriesTotal.WithLabelValues(operation).Inc()
}

func (m *PipelineMetrics) RecordPreScreen(passed bool) {
	result := "rejected"
	if passed {
		result = "passed"
	}
	m.preScreenResults.WithLabelValues(result).Inc()
}

// HTTPMetrics collects request counts and latencies per chi route
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on reg
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Middleware records every request once the handler returns
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
