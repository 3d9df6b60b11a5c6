package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/classifier"
	"github.com/AdityaD28/GreenGuardian/internal/models"
	"github.com/AdityaD28/GreenGuardian/internal/recommend"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestObservers(t *testing.T) {
	m := newTestMetrics(t)

	m.ObservePrediction(classifier.ModeDemo, models.TomatoHealthy, 20*time.Millisecond)
	m.ObservePrediction(classifier.ModeDemo, models.TomatoHealthy, 30*time.Millisecond)
	m.ObserveFailure("storage")
	m.ObserveRecommendation(models.TomatoHealthy, recommend.SourceHealthy)
	m.SetClassifierMode(classifier.ModeModel)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("demo", "Tomato_healthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionErrors.WithLabelValues("storage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues("healthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelLoaded))

	m.SetClassifierMode(classifier.ModeDemo)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ModelLoaded))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/uploads/{filename}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	for _, name := range []string{"a.jpg", "b.jpg"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/uploads/{filename}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "greenguardian_http_requests_total"))
}
