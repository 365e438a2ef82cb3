// Package server runs the wordguard HTTP API.
//
// It wires the handlers in pkg/server/handlers behind the middleware chain
// in pkg/server/middleware and manages the listener lifecycle, including
// graceful shutdown on SIGINT and SIGTERM.
//
// # Routes
//
//   - POST   /api/v1/moderation/check            check text before saving it
//   - GET    /api/v1/terms                       list prohibited terms (?q= filters)
//   - POST   /api/v1/terms                       add a term
//   - DELETE /api/v1/terms/{id}                  remove a term
//   - POST   /api/v1/terms/refresh               reload the filter's term list now
//   - GET    /api/v1/articles/{articleID}/comments
//   - POST   /api/v1/articles/{articleID}/comments
//   - DELETE /api/v1/comments/{id}
//   - GET    /api/v1/violations                  violation log (audit enabled only)
//   - GET    /health, /ready, /version, /metrics
//
// # Middleware Chain
//
// Outermost first: Recovery, RequestID, UserID, Logging, CORS, MaxBody,
// tracing, Metrics. Metrics wraps the mux directly so it can label
// requests with the matched route pattern.
//
// Term administration is not authenticated here; deploy the admin routes
// behind the site's authenticating gateway.
package server
