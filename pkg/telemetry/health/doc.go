// Package health implements liveness and readiness probes.
//
// Liveness only reports that the process is serving HTTP. Readiness runs
// every registered check concurrently, each under its own timeout; the
// service is ready only when every check passes. wordguard registers a
// "moderation" check, which fails until the first term list has loaded, and
// a "term_store" check that pings the store.
package health
