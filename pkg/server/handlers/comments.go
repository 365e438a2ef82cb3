package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"quillpress/wordguard/pkg/comments"
	"quillpress/wordguard/pkg/telemetry/logging"
)

// CommentService posts and reads article comments. *comments.Service
// implements it.
type CommentService interface {
	Post(ctx context.Context, in comments.NewComment) (*comments.Comment, error)
	List(ctx context.Context, articleID string) ([]*comments.Comment, error)
	Delete(ctx context.Context, id string) error
}

// PostCommentRequest is the body of POST /api/v1/articles/{articleID}/comments.
// UserID falls back to the X-User-ID header.
type PostCommentRequest struct {
	UserID  string `json:"user_id,omitempty"`
	Content string `json:"content"`
}

// CommentListResponse lists an article's comments, oldest first.
type CommentListResponse struct {
	Comments []*comments.Comment `json:"comments"`
	Count    int                 `json:"count"`
}

// CommentsHandler serves article comments.
type CommentsHandler struct {
	service CommentService
	logger  *slog.Logger
}

// NewCommentsHandler creates a CommentsHandler.
func NewCommentsHandler(service CommentService, logger *slog.Logger) *CommentsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentsHandler{
		service: service,
		logger:  logger.With("component", "handlers.comments"),
	}
}

// List handles GET /api/v1/articles/{articleID}/comments.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.PathValue("articleID"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Comments: list, Count: len(list)})
}

// Post handles POST /api/v1/articles/{articleID}/comments.
func (h *CommentsHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req PostCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = logging.UserID(r.Context())
	}

	c, err := h.service.Post(r.Context(), comments.NewComment{
		ArticleID: r.PathValue("articleID"),
		UserID:    userID,
		Content:   req.Content,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Delete handles DELETE /api/v1/comments/{id}.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
