// Package middleware provides the HTTP middleware chain for the wordguard
// API: panic recovery, request IDs, caller identity, access logging,
// CORS, body limits and route metrics.
//
// Each middleware has the signature func(http.Handler) http.Handler, or is
// a constructor returning one, so they compose with Chain:
//
//	handler := middleware.Chain(mux,
//	    middleware.Recovery(logger),
//	    middleware.RequestID,
//	    middleware.Logging(logger),
//	)
//
// The first middleware listed is the outermost.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so that mws[0] runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
