package comments

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"quillpress/wordguard/pkg/audit"
	"quillpress/wordguard/pkg/moderation"
	"quillpress/wordguard/pkg/moderation/termstore"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *fakeRecorder) Record(_ context.Context, ev audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type countingObserver struct {
	counts map[string]int
}

func (o *countingObserver) ObserveComment(result string) {
	o.counts[result]++
}

type staticModerator struct {
	err error
}

func (m staticModerator) FilterError(context.Context, string) error {
	return m.err
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	filter := moderation.New(termstore.NewMemoryStore("kys", "buy now"), moderation.DefaultConfig())
	return NewService(NewMemoryStore(), filter, Config{MaxLength: 20}, opts...)
}

func TestService_Post(t *testing.T) {
	tests := []struct {
		name        string
		in          NewComment
		wantContent string
		wantErr     error
	}{
		{
			name:        "accepted and trimmed",
			in:          NewComment{ArticleID: "a1", UserID: "u1", Content: "  great read  "},
			wantContent: "great read",
		},
		{
			name:        "substring of banned term is fine",
			in:          NewComment{ArticleID: "a1", UserID: "u1", Content: "kyssing"},
			wantContent: "kyssing",
		},
		{
			name:        "markup sanitised",
			in:          NewComment{ArticleID: "a1", UserID: "u1", Content: "<script>x</script><b>nice</b>"},
			wantContent: "<b>nice</b>",
		},
		{
			name:    "empty",
			in:      NewComment{ArticleID: "a1", UserID: "u1", Content: "   "},
			wantErr: ErrEmptyComment,
		},
		{
			name:    "empty after sanitising",
			in:      NewComment{ArticleID: "a1", UserID: "u1", Content: "<script>x</script>"},
			wantErr: ErrEmptyComment,
		},
		{
			name:    "missing article",
			in:      NewComment{UserID: "u1", Content: "hello"},
			wantErr: ErrMissingArticle,
		},
		{
			name:    "too long",
			in:      NewComment{ArticleID: "a1", UserID: "u1", Content: strings.Repeat("é", 21)},
			wantErr: ErrCommentTooLong,
		},
		{
			name:    "banned term",
			in:      NewComment{ArticleID: "a1", UserID: "u1", Content: "just KYS"},
			wantErr: moderation.ErrProhibitedContent,
		},
		{
			name:    "banned term joined by unknown tag",
			in:      NewComment{ArticleID: "a1", UserID: "u1", Content: "k<x>ys"},
			wantErr: moderation.ErrProhibitedContent,
		},
		{
			name:    "banned term joined by dropped script",
			in:      NewComment{ArticleID: "a1", UserID: "u1", Content: "k<script></script>ys"},
			wantErr: moderation.ErrProhibitedContent,
		},
		{
			name:    "banned term joined by dropped style content",
			in:      NewComment{ArticleID: "a1", UserID: "u1", Content: "k<style>z</style>ys"},
			wantErr: moderation.ErrProhibitedContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)

			got, err := s.Post(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Post() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Post() error = %v", err)
			}
			if got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
			if got.ID == "" || got.CreatedAt.IsZero() {
				t.Error("ID and CreatedAt should be set")
			}
		})
	}
}

func TestService_SanitisedTextIsModerated(t *testing.T) {
	rec := &fakeRecorder{}
	obs := &countingObserver{counts: map[string]int{}}
	store := NewMemoryStore()
	filter := moderation.New(termstore.NewMemoryStore("kys"), moderation.DefaultConfig())
	s := NewService(store, filter, Config{}, WithRecorder(rec), WithObserver(obs))
	ctx := context.Background()

	_, err := s.Post(ctx, NewComment{ArticleID: "a1", UserID: "u1", Content: "hey k<em2>ys"})
	if !errors.Is(err, moderation.ErrProhibitedContent) {
		t.Fatalf("Post() error = %v, want prohibited content", err)
	}

	stored, err := s.List(ctx, "a1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("stored %d comments, want none", len(stored))
	}
	if len(rec.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(rec.events))
	}
	if diff := cmp.Diff([]string{"kys"}, rec.events[0].Matched); diff != "" {
		t.Errorf("matched mismatch (-want +got):\n%s", diff)
	}
	if obs.counts[ResultRejected] != 1 {
		t.Errorf("rejected count = %d, want 1", obs.counts[ResultRejected])
	}
}

func TestService_PostAtLengthLimit(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Post(context.Background(), NewComment{ArticleID: "a1", Content: strings.Repeat("é", 20)}); err != nil {
		t.Errorf("Post() at limit error = %v", err)
	}
}

func TestService_ViolationIsAuditedNotLeaked(t *testing.T) {
	rec := &fakeRecorder{}
	obs := &countingObserver{counts: map[string]int{}}
	s := newTestService(t, WithRecorder(rec), WithObserver(obs))

	_, err := s.Post(context.Background(), NewComment{ArticleID: "a1", UserID: "u1", Content: "buy now, kys"})
	if err == nil {
		t.Fatal("expected violation")
	}
	if err.Error() != moderation.ViolationMessage {
		t.Errorf("error = %q, want the fixed message", err.Error())
	}
	if strings.Contains(err.Error(), "kys") {
		t.Error("error message leaks a banned term")
	}

	if len(rec.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Source != audit.SourceComment || ev.SubjectID != "a1" || ev.UserID != "u1" {
		t.Errorf("event = %+v", ev)
	}
	if diff := cmp.Diff([]string{"buy now", "kys"}, ev.Matched); diff != "" {
		t.Errorf("Matched mismatch (-want +got):\n%s", diff)
	}
	if obs.counts[ResultRejected] != 1 {
		t.Errorf("rejected count = %d, want 1", obs.counts[ResultRejected])
	}

	list, _ := s.List(context.Background(), "a1")
	if len(list) != 0 {
		t.Errorf("rejected comment was stored: %v", list)
	}
}

func TestService_Unavailable(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewService(NewMemoryStore(), staticModerator{err: &moderation.UnavailableError{}}, Config{}, WithRecorder(rec))

	_, err := s.Post(context.Background(), NewComment{ArticleID: "a1", Content: "hello"})
	if !errors.Is(err, moderation.ErrModerationUnavailable) {
		t.Fatalf("Post() error = %v, want ErrModerationUnavailable", err)
	}
	if len(rec.events) != 0 {
		t.Error("unavailable moderation must not be audited as a violation")
	}
}

func TestService_ListAndDelete(t *testing.T) {
	for name, store := range map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": openSQLite(t),
	} {
		t.Run(name, func(t *testing.T) {
			filter := moderation.New(termstore.NewMemoryStore("kys"), moderation.DefaultConfig())
			s := NewService(store, filter, Config{})

			clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			s.now = func() time.Time {
				clock = clock.Add(time.Second)
				return clock
			}

			ctx := context.Background()
			var ids []string
			for _, text := range []string{"first", "second", "third"} {
				c, err := s.Post(ctx, NewComment{ArticleID: "a1", UserID: "u1", Content: text})
				if err != nil {
					t.Fatalf("Post(%q) error = %v", text, err)
				}
				ids = append(ids, c.ID)
			}
			if _, err := s.Post(ctx, NewComment{ArticleID: "a2", Content: "elsewhere"}); err != nil {
				t.Fatal(err)
			}

			list, err := s.List(ctx, "a1")
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var contents []string
			for _, c := range list {
				contents = append(contents, c.Content)
			}
			if diff := cmp.Diff([]string{"first", "second", "third"}, contents); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}

			if err := s.Delete(ctx, ids[1]); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := s.Delete(ctx, ids[1]); !errors.Is(err, ErrCommentNotFound) {
				t.Errorf("Delete(again) error = %v, want ErrCommentNotFound", err)
			}

			list, _ = s.List(ctx, "a1")
			if len(list) != 2 {
				t.Errorf("len(List()) = %d, want 2", len(list))
			}
		})
	}
}

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "comments.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
