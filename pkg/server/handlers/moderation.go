package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"quillpress/wordguard/pkg/audit"
	"quillpress/wordguard/pkg/moderation"
	"quillpress/wordguard/pkg/telemetry/logging"
)

// Moderator is the part of moderation.Filter the API uses.
type Moderator interface {
	FilterError(ctx context.Context, text string) error
	Refresh(ctx context.Context) []string
}

// Recorder stores violation events. *audit.Recorder implements it.
type Recorder interface {
	Record(ctx context.Context, ev audit.Event) error
}

// CheckRequest is the body of POST /api/v1/moderation/check.
type CheckRequest struct {
	Text string `json:"text"`

	// SubjectID optionally names what the text belongs to,
	// for example an article being edited.
	SubjectID string `json:"subject_id,omitempty"`
}

// CheckResponse is returned for text that passed moderation.
type CheckResponse struct {
	Allowed bool `json:"allowed"`
}

// ModerationHandler serves the generic moderation gate used by content
// surfaces other than comments (articles, blog posts) before they save.
type ModerationHandler struct {
	moderator Moderator
	recorder  Recorder
	logger    *slog.Logger
}

// NewModerationHandler creates a ModerationHandler. recorder may be nil.
func NewModerationHandler(moderator Moderator, recorder Recorder, logger *slog.Logger) *ModerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationHandler{
		moderator: moderator,
		recorder:  recorder,
		logger:    logger.With("component", "handlers.moderation"),
	}
}

// Check handles POST /api/v1/moderation/check. Clean text returns 200,
// prohibited text 422 with the fixed moderation message.
func (h *ModerationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.moderator.FilterError(r.Context(), req.Text)
	if err != nil {
		if v, ok := moderation.IsViolation(err); ok {
			h.record(r.Context(), req, v.Matched())
		}
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, CheckResponse{Allowed: true})
}

func (h *ModerationHandler) record(ctx context.Context, req CheckRequest, matched []string) {
	if h.recorder == nil {
		return
	}
	err := h.recorder.Record(ctx, audit.Event{
		Source:    audit.SourceCheck,
		SubjectID: req.SubjectID,
		UserID:    logging.UserID(ctx),
		Content:   req.Text,
		Matched:   matched,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record violation", "error", err)
	}
}
