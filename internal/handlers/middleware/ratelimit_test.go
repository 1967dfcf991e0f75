package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	request := func(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	t.Run("limits each client separately", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 2, &warnRecorder{})
		h := rl.Handler(next)

		require.Equal(t, http.StatusOK, request(h, "10.0.0.1:1000").Code)
		require.Equal(t, http.StatusOK, request(h, "10.0.0.1:1001").Code, "port is not a part of client key")

		rec := request(h, "10.0.0.1:1002")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.JSONEq(t, `{"error": "service_error", "message": "Too many requests"}`, rec.Body.String())

		require.Equal(t, http.StatusOK, request(h, "10.0.0.2:1000").Code, "other client has own budget")
	})

	t.Run("cleanup forgets idle clients", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 1, &warnRecorder{})
		h := rl.Handler(next)

		require.Equal(t, http.StatusOK, request(h, "10.0.0.1:1000").Code)
		require.Equal(t, http.StatusTooManyRequests, request(h, "10.0.0.1:1000").Code)

		rl.Cleanup(time.Hour)
		require.Len(t, rl.limiters, 1, "recently seen client is kept")

		rl.Cleanup(-time.Second)
		require.Empty(t, rl.limiters)

		require.Equal(t, http.StatusOK, request(h, "10.0.0.1:1000").Code, "forgotten client starts with full budget")
	})
}
