package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"quillpress/wordguard/pkg/comments"
	"quillpress/wordguard/pkg/moderation"
	"quillpress/wordguard/pkg/moderation/termstore"
)

// Error codes.
const (
	CodeProhibitedContent = "prohibited_content"
	CodeUnavailable       = "moderation_unavailable"
	CodeInvalidRequest    = "invalid_request"
	CodeTooLarge          = "request_too_large"
	CodeConflict          = "conflict"
	CodeNotFound          = "not_found"
	CodeInternal          = "internal_error"
)

// DuplicateTermMessage is shown when a term is added twice.
const DuplicateTermMessage = "This word is already in the list."

// ErrorBody is the error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// writeServiceError maps domain errors to HTTP responses. Unknown errors
// are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, moderation.ErrProhibitedContent):
		writeError(w, http.StatusUnprocessableEntity, CodeProhibitedContent, moderation.ViolationMessage)
	case errors.Is(err, moderation.ErrModerationUnavailable):
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, moderation.UnavailableMessage)
	case errors.Is(err, termstore.ErrTermExists):
		writeError(w, http.StatusConflict, CodeConflict, DuplicateTermMessage)
	case errors.Is(err, termstore.ErrTermNotFound), errors.Is(err, comments.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, termstore.ErrEmptyTerm),
		errors.Is(err, comments.ErrEmptyComment),
		errors.Is(err, comments.ErrCommentTooLong),
		errors.Is(err, comments.ErrMissingArticle):
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, CodeInternal, "An internal error occurred. Please try again later.")
	}
}

// decodeJSON decodes a single JSON object from the request body and
// writes a 400 or 413 response when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge,
				fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "request body is required")
		default:
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body: "+err.Error())
		}
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "request body must contain a single JSON object")
		return false
	}
	return true
}
