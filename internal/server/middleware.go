package server

import (
	"net/http"
	"strconv"
	"time"

	apphttp "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/metrics"
)

// instrument records request metrics and an access log line for every request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := apphttp.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		// the mux fills r.Pattern once it has matched a route
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		s.logger.Debug("http request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"route":      route,
			"status":     rec.Status,
			"durationMs": elapsed.Milliseconds(),
		})
	})
}
