package middleware

import (
	"net/http"
	"time"
)

// HTTPObserver receives per-request measurements.
// metrics.Collector implements it.
type HTTPObserver interface {
	ObserveHTTP(route string, status int, d time.Duration)
}

// UnmatchedRoute labels requests that matched no registered pattern.
const UnmatchedRoute = "unmatched"

// Metrics reports every request to obs, labelled with the ServeMux pattern
// that served it. It must wrap the mux directly and pass the request
// through unchanged, so that the pattern set by the mux is visible here.
func Metrics(obs HTTPObserver) Middleware {
	return func(next http.Handler) http.Handler {
		if obs == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = UnmatchedRoute
			}
			obs.ObserveHTTP(route, rw.statusCode, time.Since(start))
		})
	}
}
