package middleware

import (
	"net/http"
	"time"
)

type requestLogger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// responseRecorder remembers what handler sent, it is shared by request log and metrics
type responseRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	rr.wroteHeader = true
	size, err := rr.ResponseWriter.Write(p)
	rr.size += size
	return size, err
}

func (rr *responseRecorder) WriteHeader(statusCode int) {
	if rr.wroteHeader {
		return
	}
	rr.wroteHeader = true
	rr.status = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

// LoggerMiddleware writes one line per served request.
// Server errors go to error level, the rest to info.
func LoggerMiddleware(l requestLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := newResponseRecorder(w)

			next.ServeHTTP(rr, r)

			args := []any{
				"method", r.Method,
				"uri", r.RequestURI,
				"route", r.Pattern,
				"status", rr.status,
				"size", rr.size,
				"duration", time.Since(start),
				"client", clientAddr(r),
			}
			if rr.status >= http.StatusInternalServerError {
				l.Error("HTTP request failed", args...)
				return
			}
			l.Info("HTTP request served", args...)
		})
	}
}
