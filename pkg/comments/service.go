package comments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"quillpress/wordguard/pkg/audit"
	"quillpress/wordguard/pkg/moderation"
)

// DefaultMaxLength is the default comment length limit in characters.
const DefaultMaxLength = 1000

// Comment outcomes reported to the Observer.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
)

// Moderator rejects content containing banned terms.
type Moderator interface {
	FilterError(ctx context.Context, text string) error
}

// ViolationRecorder receives rejected submissions.
type ViolationRecorder interface {
	Record(ctx context.Context, ev audit.Event) error
}

// Observer receives comment outcomes for metrics.
type Observer interface {
	ObserveComment(result string)
}

// Config configures the comment service.
type Config struct {
	// MaxLength is the maximum comment length in characters.
	// Default: 1000
	MaxLength int
}

// Service moderates, sanitises and stores comments.
type Service struct {
	store     Store
	moderator Moderator
	recorder  ViolationRecorder
	observer  Observer
	policy    *bluemonday.Policy
	maxLength int
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sends rejected comments to r.
func WithRecorder(r ViolationRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithObserver reports outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a comment service.
func NewService(store Store, moderator Moderator, cfg Config, opts ...Option) *Service {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxLength
	}
	s := &Service{
		store:     store,
		moderator: moderator,
		policy:    bluemonday.UGCPolicy(),
		maxLength: cfg.MaxLength,
		logger:    slog.Default().With("component", "comments"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Post validates, moderates and stores a comment.
//
// Rejected comments return a *moderation.ViolationError whose message is the
// fixed moderation message.
func (s *Service) Post(ctx context.Context, in NewComment) (*Comment, error) {
	content := strings.TrimSpace(in.Content)

	switch {
	case strings.TrimSpace(in.ArticleID) == "":
		s.observe(ResultInvalid)
		return nil, ErrMissingArticle
	case content == "":
		s.observe(ResultInvalid)
		return nil, ErrEmptyComment
	case utf8.RuneCountInString(content) > s.maxLength:
		s.observe(ResultInvalid)
		return nil, fmt.Errorf("%w: maximum is %d characters", ErrCommentTooLong, s.maxLength)
	}

	if err := s.moderate(ctx, in, content); err != nil {
		return nil, err
	}

	sanitized := strings.TrimSpace(s.policy.Sanitize(content))
	if sanitized == "" {
		s.observe(ResultInvalid)
		return nil, ErrEmptyComment
	}
	// Sanitising drops tags and their contents, which can join words the
	// raw check saw apart. The stored text is checked too.
	if sanitized != content {
		if err := s.moderate(ctx, in, sanitized); err != nil {
			return nil, err
		}
	}

	c := &Comment{
		ID:        uuid.New().String(),
		ArticleID: in.ArticleID,
		UserID:    in.UserID,
		Content:   sanitized,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}

	s.observe(ResultAccepted)
	s.logger.Debug("comment posted", "comment_id", c.ID, "article_id", c.ArticleID)
	return c, nil
}

func (s *Service) moderate(ctx context.Context, in NewComment, text string) error {
	err := s.moderator.FilterError(ctx, text)
	if v, ok := moderation.IsViolation(err); ok {
		s.observe(ResultRejected)
		s.recordViolation(ctx, in, text, v.Matched())
	}
	return err
}

// List returns the comments of an article, oldest first.
func (s *Service) List(ctx context.Context, articleID string) ([]*Comment, error) {
	return s.store.List(ctx, articleID)
}

// Delete removes a comment.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("comment deleted", "comment_id", id)
	return nil
}

func (s *Service) recordViolation(ctx context.Context, in NewComment, content string, matched []string) {
	s.logger.Info("comment rejected by content filter",
		"article_id", in.ArticleID,
		"user_id", in.UserID,
		"match_count", len(matched),
	)
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, audit.Event{
		Source:    audit.SourceComment,
		SubjectID: in.ArticleID,
		UserID:    in.UserID,
		Content:   content,
		Matched:   matched,
	})
	if err != nil {
		s.logger.Warn("failed to record violation", "error", err)
	}
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveComment(result)
	}
}
