package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /spbu/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := m.Handler(mux)

	for _, path := range []string{"/spbu/1", "/spbu/2", "/nope"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.requests.WithLabelValues("GET", "GET /spbu/{id}", "200")), 0, "ids are folded into pattern")
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.inFlight), 0)

	count, err := testutil.GatherAndCount(reg, "spbuhub_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one histogram per method and path")
}
