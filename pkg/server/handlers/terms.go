package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"quillpress/wordguard/pkg/moderation/termstore"
)

// TermManager edits the prohibited term list. *termstore.Manager
// implements it.
type TermManager interface {
	List(ctx context.Context, query string) ([]*termstore.Term, error)
	Add(ctx context.Context, word string) (*termstore.Term, error)
	Remove(ctx context.Context, id string) error
}

// AddTermRequest is the body of POST /api/v1/terms.
type AddTermRequest struct {
	Word string `json:"word"`
}

// TermListResponse lists stored terms.
type TermListResponse struct {
	Terms []*termstore.Term `json:"terms"`
	Count int               `json:"count"`
}

// RefreshResponse reports the size of the freshly loaded list.
type RefreshResponse struct {
	TermsLoaded int `json:"terms_loaded"`
}

// TermsHandler serves the administrative term list.
type TermsHandler struct {
	manager   TermManager
	moderator Moderator
	logger    *slog.Logger
}

// NewTermsHandler creates a TermsHandler.
func NewTermsHandler(manager TermManager, moderator Moderator, logger *slog.Logger) *TermsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TermsHandler{
		manager:   manager,
		moderator: moderator,
		logger:    logger.With("component", "handlers.terms"),
	}
}

// List handles GET /api/v1/terms?q=.
func (h *TermsHandler) List(w http.ResponseWriter, r *http.Request) {
	terms, err := h.manager.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, TermListResponse{Terms: terms, Count: len(terms)})
}

// Add handles POST /api/v1/terms.
func (h *TermsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddTermRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	term, err := h.manager.Add(r.Context(), req.Word)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, term)
}

// Remove handles DELETE /api/v1/terms/{id}.
func (h *TermsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /api/v1/terms/refresh. It reloads the filter's
// term list immediately instead of waiting for the cache to expire.
func (h *TermsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	terms := h.moderator.Refresh(r.Context())
	h.logger.InfoContext(r.Context(), "term list refreshed on request", "terms", len(terms))
	writeJSON(w, http.StatusOK, RefreshResponse{TermsLoaded: len(terms)})
}
