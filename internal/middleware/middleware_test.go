package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plantestutil "github.com/mcoot/plans/internal/testutil"
)

func TestResponseWriterCapturesStatusAndSize(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusTeapot)
	_, _ = rw.Write([]byte("hello"))

	assert.Equal(t, http.StatusTeapot, rw.Status())
	assert.Equal(t, 5, rw.Size())
	assert.Same(t, rw, NewResponseWriter(rw))
}

func TestLoggingPassesThrough(t *testing.T) {
	handler := Logging(plantestutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRecoveryInvokesPanicHandler(t *testing.T) {
	var recovered any
	handler := Recovery(plantestutil.NopLogger(), func(w http.ResponseWriter, r *http.Request, err any) {
		recovered = err
		DefaultPanicHandler(w, r, err)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", recovered)
}

func TestRecoveryReraisesAbortHandler(t *testing.T) {
	handler := Recovery(plantestutil.NopLogger(), DefaultPanicHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestMetricsRecordsRouteTemplate(t *testing.T) {
	metrics := NewMetrics()

	router := mux.NewRouter()
	router.Use(metrics.Middleware)
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	for _, path := range []string{"/items/1", "/items/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	count := testutil.ToFloat64(metrics.requestTotal.WithLabelValues(http.MethodGet, "/items/{id}", "204"))
	assert.Equal(t, float64(2), count)
}

func TestMetricsHandlerExposesCounters(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `plans_http_requests_total{method="GET",route="unmatched",status="200"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
