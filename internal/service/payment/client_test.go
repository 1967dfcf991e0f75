package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/numeric"
)

func TestClient_Charge(t *testing.T) {
	charge := Charge{TransactionID: uuid.New(), Amount: numeric.MustParse("105000.00"), Method: "qris"}

	serve := func(t *testing.T, h http.HandlerFunc) *Client {
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		return NewClient(srv.URL+"/", logger.NewNoOpLogger())
	}

	t.Run("approved", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/charges", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "105000.00", body["amount"], "amount is sent as exact string")
			assert.Equal(t, charge.TransactionID.String(), body["transaction_id"])
			assert.Equal(t, "qris", body["method"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status": "approved", "reference": "ref-1"}`))
		})

		res, err := c.Charge(t.Context(), charge)

		require.NoError(t, err)
		assert.Equal(t, Result{Approved: true, Reference: "ref-1"}, res)
	})

	t.Run("declined in body", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "declined", "reason": "insufficient funds"}`))
		})

		res, err := c.Charge(t.Context(), charge)

		require.NoError(t, err, "declined charge is not an error")
		assert.False(t, res.Approved)
		assert.Equal(t, "insufficient funds", res.Reason)
	})

	t.Run("declined by status", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
		})

		res, err := c.Charge(t.Context(), charge)

		require.NoError(t, err)
		assert.False(t, res.Approved)
	})

	t.Run("throttled", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := c.Charge(t.Context(), charge)

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		assert.Equal(t, CodeRetryAfter, payErr.Code)
		assert.Equal(t, 7*time.Second, payErr.RetryAfter)
	})

	t.Run("unexpected responses", func(t *testing.T) {
		for name, h := range map[string]http.HandlerFunc{
			"server error":   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			"garbage body":   func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`not json`)) },
			"unknown status": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"status": "maybe"}`)) },
		} {
			t.Run(name, func(t *testing.T) {
				_, err := serve(t, h).Charge(t.Context(), charge)

				var payErr *Error
				require.True(t, errors.As(err, &payErr))
				assert.Equal(t, CodeUnknown, payErr.Code)
			})
		}
	})

	t.Run("gateway down", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", logger.NewNoOpLogger())

		_, err := c.Charge(t.Context(), charge)

		require.Error(t, err)
	})
}

func TestSimulated_Charge(t *testing.T) {
	id := uuid.New()

	res, err := Simulated{}.Charge(t.Context(), Charge{TransactionID: id})

	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Equal(t, "sim-"+id.String(), res.Reference)
}
