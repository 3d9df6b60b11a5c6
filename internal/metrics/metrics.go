// Package metrics provides the Prometheus metrics of the diagnosis service.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/classifier"
	"github.com/AdityaD28/GreenGuardian/internal/models"
	"github.com/AdityaD28/GreenGuardian/internal/recommend"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics of the application.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec
	PredictionErrors   *prometheus.CounterVec
	PredictionDuration *prometheus.HistogramVec
	Recommendations    *prometheus.CounterVec
	ModelLoaded        prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// New creates the metrics and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenguardian_predictions_total",
			Help: "Total number of completed predictions partitioned by classifier mode and label.",
		},
		[]string{"mode", "label"},
	)
	m.PredictionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenguardian_prediction_errors_total",
			Help: "Total number of failed diagnosis requests partitioned by pipeline stage.",
		},
		[]string{"stage"},
	)
	m.PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenguardian_prediction_duration_seconds",
			Help:    "Time taken by the diagnosis pipeline, recommendation included.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"mode"},
	)
	m.Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenguardian_recommendations_total",
			Help: "Total number of recommendations partitioned by how they were produced.",
		},
		[]string{"source"},
	)
	m.ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "greenguardian_model_loaded",
			Help: "Whether the classifier artifact is loaded (1) or demo mode is active (0).",
		},
	)
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenguardian_http_requests_total",
			Help: "Total number of HTTP requests partitioned by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenguardian_http_request_duration_seconds",
			Help:    "HTTP request latency partitioned by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.PredictionsTotal.Describe(ch)
	m.PredictionErrors.Describe(ch)
	m.PredictionDuration.Describe(ch)
	m.Recommendations.Describe(ch)
	m.ModelLoaded.Describe(ch)
	m.HTTPRequestsTotal.Describe(ch)
	m.HTTPRequestDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.PredictionsTotal.Collect(ch)
	m.PredictionErrors.Collect(ch)
	m.PredictionDuration.Collect(ch)
	m.Recommendations.Collect(ch)
	m.ModelLoaded.Collect(ch)
	m.HTTPRequestsTotal.Collect(ch)
	m.HTTPRequestDuration.Collect(ch)
}

// ObservePrediction records a completed prediction.
func (m *Metrics) ObservePrediction(mode classifier.Mode, label models.Label, elapsed time.Duration) {
	m.PredictionsTotal.WithLabelValues(string(mode), label.String()).Inc()
	m.PredictionDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}

// ObserveFailure records a pipeline failure at stage.
func (m *Metrics) ObserveFailure(stage string) {
	m.PredictionErrors.WithLabelValues(stage).Inc()
}

// ObserveRecommendation records how a recommendation was produced.
func (m *Metrics) ObserveRecommendation(_ models.Label, source recommend.Source) {
	m.Recommendations.WithLabelValues(string(source)).Inc()
}

// SetClassifierMode exposes the classifier selected at startup.
func (m *Metrics) SetClassifierMode(mode classifier.Mode) {
	if mode == classifier.ModeModel {
		m.ModelLoaded.Set(1)
		return
	}
	m.ModelLoaded.Set(0)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry:      m.registry,
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// Middleware counts requests by chi route pattern, keeping label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
