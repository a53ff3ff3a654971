package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Register(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	require.NotNil(t, m)

	// Touch a few metrics so they show up in the gather
	m.SearchesTotal.WithLabelValues("query", "ok").Inc()
	m.SpeciesTotal.Set(42)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["wildlife_searches_total"])
	assert.True(t, names["wildlife_species_total"])
}

func TestMetrics_ObserveStoreQuery(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveStoreQuery("list_species", "sqlite", 5*time.Millisecond, nil)
	m.ObserveStoreQuery("list_species", "sqlite", 5*time.Millisecond, errors.New("boom"))

	families, err := registry.Gather()
	require.NoError(t, err)

	var sawErrors bool
	for _, mf := range families {
		if mf.GetName() == "wildlife_store_errors_total" {
			sawErrors = true
			assert.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, sawErrors, "store error counter should be registered")
}

func TestMetrics_InstrumentHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	handler := m.InstrumentHandler("/species", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/species?name=kiwi", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The counter must carry the recorded status code
	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	m.Handler().ServeHTTP(metricsRec, metricsReq)

	body := metricsRec.Body.String()
	assert.True(t, strings.Contains(body, `wildlife_http_requests_total{method="GET",path="/species",status="404"} 1`), body)
}
