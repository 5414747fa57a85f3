package http

import (
	"net/http"
	"strings"
	"time"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func WithMetrics(next http.Handler, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		metrics.RecordRequest(r.Context(), r.Method, normalizeRoute(r.URL.Path), rw.statusCode, duration)
	})
}

// normalizeRoute replaces path parameters with placeholders so the route
// label stays low-cardinality.
func normalizeRoute(path string) string {
	if rest, ok := strings.CutPrefix(path, "/v1/orders/"); ok && rest != "" {
		if strings.HasSuffix(rest, "/status") {
			return "/v1/orders/{id}/status"
		}
		return "/v1/orders/{id}"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/carts/"); ok && rest != "" {
		if strings.Contains(rest, "/") {
			return "/v1/carts/{id}/items"
		}
		return "/v1/carts/{id}"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/stock/"); ok && rest != "" {
		return "/v1/stock/{unit}"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/settings/"); ok && rest != "" {
		return "/v1/settings/{key}"
	}
	return path
}
