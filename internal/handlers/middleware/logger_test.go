package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	level  string
	msg    string
	fields map[string]any
}

type lineRecorder struct {
	lines []logLine
}

func (r *lineRecorder) record(level string, msg string, args []any) {
	fields := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		fields[args[i].(string)] = args[i+1]
	}
	r.lines = append(r.lines, logLine{level: level, msg: msg, fields: fields})
}

func (r *lineRecorder) Info(msg string, args ...any)  { r.record("info", msg, args) }
func (r *lineRecorder) Error(msg string, args ...any) { r.record("error", msg, args) }

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
		msg    string
	}{
		{"served", http.StatusCreated, "info", "HTTP request served"},
		{"client error", http.StatusConflict, "info", "HTTP request served"},
		{"server error", http.StatusInternalServerError, "error", "HTTP request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &lineRecorder{}
			mux := http.NewServeMux()
			mux.HandleFunc("POST /transactions/{id}/pay", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.WriteHeader(http.StatusTeapot) // ignored, header already sent
				_, err := w.Write([]byte("paid"))
				require.NoError(t, err)
			})
			srv := httptest.NewServer(LoggerMiddleware(rec)(mux))
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/transactions/42/pay", "application/json", nil)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, "paid", string(body))

			require.Len(t, rec.lines, 1, "one line per request")
			line := rec.lines[0]
			assert.Equal(t, tt.level, line.level)
			assert.Equal(t, tt.msg, line.msg)
			assert.Equal(t, "POST", line.fields["method"])
			assert.Equal(t, "/transactions/42/pay", line.fields["uri"])
			assert.Equal(t, "POST /transactions/{id}/pay", line.fields["route"])
			assert.Equal(t, tt.status, line.fields["status"])
			assert.Equal(t, 4, line.fields["size"])
			assert.NotEmpty(t, line.fields["duration"])
			assert.Equal(t, "127.0.0.1", line.fields["client"])
		})
	}

	t.Run("implicit ok", func(t *testing.T) {
		rec := &lineRecorder{}
		h := LoggerMiddleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Len(t, rec.lines, 1)
		assert.Equal(t, http.StatusOK, rec.lines[0].fields["status"])
		assert.Equal(t, "", rec.lines[0].fields["route"], "no route outside of mux")
	})
}
