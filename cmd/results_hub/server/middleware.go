package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/results-hub/results-hub/internal/metrics"
	"github.com/results-hub/results-hub/pkg/api"
)

// the endpoint label used for paths without a route
const otherEndpoint = "other"

// Middleware recovers from handler panics and, when enabled, records the
// Prometheus request metrics. The endpoint label is the route path so that
// unknown paths do not create new series.
func Middleware(next http.Handler, prometheusMetrics bool, logger *slog.Logger, paths ...string) http.Handler {
	handler := recoverer(next, logger)
	if !prometheusMetrics {
		return handler
	}

	known := make(map[string]bool, len(paths))
	for _, p := range paths {
		known[p] = true
	}
	logger.Info("Enabled Prometheus metrics middleware")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		metrics.HTTPRequestInFlight.Inc()
		defer metrics.HTTPRequestInFlight.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler.ServeHTTP(rw, r)

		endpoint := r.URL.Path
		if !known[endpoint] {
			endpoint = otherEndpoint
		}
		status := strconv.Itoa(rw.statusCode)
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, endpoint, status).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestTotal.WithLabelValues(r.Method, endpoint, status).Inc()
	})
}

func recoverer(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Request panicked", "uri", r.URL.RequestURI(), "panic", p, "stack", string(debug.Stack()))
				body, _ := json.Marshal(api.RespModel{Code: api.Error.Code(), Message: api.Error.Message()})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write(body)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
