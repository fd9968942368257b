package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/metrics"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging emits one structured log line per request and feeds the metrics
// collector. The collector may be nil in tests.
func Logging(logger zerolog.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("elapsed", elapsed).
				Str("remote", r.RemoteAddr).
				Msg("request")

			if collector != nil {
				collector.Record(r.Method, r.Pattern, rec.status, elapsed)
			}
		})
	}
}
