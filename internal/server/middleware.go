// HTTP middleware: request logging and optional throttling.

package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/camvine/fakesdb/internal/server/ratelimit"
)

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request. The Action value is read after
// the handler ran, once the form is parsed.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"action", r.Form.Get("Action"),
			"status", rec.status,
			"dur", time.Since(start).Round(time.Microsecond))
	})
}

// throttle rejects requests over the per-client budget with a
// ServiceUnavailable wire fault.
func throttle(limiter *ratelimit.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}
		if !limiter.Allow(key) {
			writeThrottled(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
