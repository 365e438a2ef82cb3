package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"quillpress/wordguard/pkg/telemetry/logging"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// UserIDHeader carries the caller's user ID. It is set by the
	// authenticating front end; wordguard does not verify it.
	UserIDHeader = "X-User-ID"

	maxRequestIDLength = 128
)

// RequestID assigns every request an ID, reusing a client-supplied
// X-Request-ID when it is present and reasonably short. The ID is stored
// in the request context for logging and echoed in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID copies the X-User-ID header into the request context.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), userID)))
	})
}
