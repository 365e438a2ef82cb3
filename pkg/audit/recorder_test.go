package audit_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"quillpress/wordguard/pkg/audit"
	"quillpress/wordguard/pkg/audit/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRecorder_RecordAndClose(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := audit.NewRecorder(store, nil)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := rec.Record(ctx, audit.Event{
			Source:    audit.SourceComment,
			SubjectID: "article-1",
			UserID:    "user-7",
			Content:   "you should kys",
			Matched:   []string{"kys"},
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	written, dropped := rec.Stats()
	if written != 5 || dropped != 0 {
		t.Errorf("Stats() = (%d, %d), want (5, 0)", written, dropped)
	}

	got, err := store.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("stored %d violations, want 5", len(got))
	}

	v := got[0]
	if v.ID == "" {
		t.Error("violation ID should be set")
	}
	if diff := cmp.Diff([]string{"kys"}, v.Matched); diff != "" {
		t.Errorf("Matched mismatch (-want +got):\n%s", diff)
	}
	if v.ContentHash != audit.HashContent("you should kys") {
		t.Errorf("ContentHash = %q", v.ContentHash)
	}
	if strings.Contains(v.ContentHash, "kys") {
		t.Error("content hash must not contain the raw text")
	}
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	rec := audit.NewRecorder(storage.NewMemoryStorage(), nil)
	rec.Close()
	rec.Close()

	err := rec.Record(context.Background(), audit.Event{Source: audit.SourceCheck})
	if !errors.Is(err, audit.ErrRecorderClosed) {
		t.Errorf("Record() error = %v, want ErrRecorderClosed", err)
	}
}

func TestRecorder_Disabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := audit.NewRecorder(store, &audit.RecorderConfig{Enabled: false})

	if err := rec.Record(context.Background(), audit.Event{Source: audit.SourceComment}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	rec.Close()

	n, _ := store.Count(context.Background(), &audit.Query{})
	if n != 0 {
		t.Errorf("disabled recorder stored %d violations", n)
	}
}

func TestRecorder_RequiresSource(t *testing.T) {
	rec := audit.NewRecorder(storage.NewMemoryStorage(), nil)
	defer rec.Close()

	err := rec.Record(context.Background(), audit.Event{Content: "x"})
	if !errors.Is(err, audit.ErrInvalidViolation) {
		t.Errorf("Record() error = %v, want ErrInvalidViolation", err)
	}
}

// blockingStorage blocks every Store until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	release chan struct{}
	once    sync.Once
}

func (b *blockingStorage) Store(ctx context.Context, v *audit.Violation) error {
	<-b.release
	return b.MemoryStorage.Store(ctx, v)
}

func (b *blockingStorage) unblock() {
	b.once.Do(func() { close(b.release) })
}

func TestRecorder_BufferFull(t *testing.T) {
	store := &blockingStorage{
		MemoryStorage: storage.NewMemoryStorage(),
		release:       make(chan struct{}),
	}
	rec := audit.NewRecorder(store, &audit.RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  1,
		WriteTimeout: 20 * time.Millisecond,
	})
	defer func() {
		store.unblock()
		rec.Close()
	}()

	ctx := context.Background()
	ev := audit.Event{Source: audit.SourceComment, Content: "x"}

	// One event blocks in Store and one fills the buffer, so later
	// events must time out.
	full := 0
	for i := 0; i < 5; i++ {
		if err := rec.Record(ctx, ev); errors.Is(err, audit.ErrBufferFull) {
			full++
		}
	}
	if full < 3 {
		t.Errorf("ErrBufferFull returned %d times, want at least 3", full)
	}
	if _, dropped := rec.Stats(); dropped < 3 {
		t.Errorf("dropped = %d, want at least 3", dropped)
	}
}
