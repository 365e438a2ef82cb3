package moderation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeSource is an in-memory Source that counts fetches.
type fakeSource struct {
	mu    sync.Mutex
	words []string
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (s *fakeSource) Words(ctx context.Context) ([]string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.words...), nil
}

func (s *fakeSource) set(words []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = words
	s.err = err
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestFilter(t *testing.T, words []string) (*Filter, *fakeSource, *fakeClock) {
	t.Helper()
	src := &fakeSource{words: words}
	clock := newFakeClock()
	return New(src, DefaultConfig(), WithClock(clock.Now)), src, clock
}

func TestFilter_Check(t *testing.T) {
	terms := []string{"kill yourself", "kys", "ass", "fuck", "c++", "buy now"}

	tests := []struct {
		name        string
		text        string
		wantClean   bool
		wantMatched []string
	}{
		{
			name:        "clean text",
			text:        "What a thoughtful article, thank you.",
			wantClean:   true,
			wantMatched: []string{},
		},
		{
			name:        "standalone word",
			text:        "please don't say things like that to anyone, kys",
			wantClean:   false,
			wantMatched: []string{"kys"},
		},
		{
			name:        "substring does not match",
			text:        "I am taking a class",
			wantClean:   true,
			wantMatched: []string{},
		},
		{
			name:        "substring at word start does not match",
			text:        "this is a classic example",
			wantClean:   true,
			wantMatched: []string{},
		},
		{
			name:        "upper case",
			text:        "FUCK this",
			wantClean:   false,
			wantMatched: []string{"fuck"},
		},
		{
			name:        "mixed case",
			text:        "oh FuCk.",
			wantClean:   false,
			wantMatched: []string{"fuck"},
		},
		{
			name:        "phrase",
			text:        "Just go and Kill Yourself!",
			wantClean:   false,
			wantMatched: []string{"kill yourself"},
		},
		{
			name:        "html tags stripped",
			text:        "<b>kys</b>",
			wantClean:   false,
			wantMatched: []string{"kys"},
		},
		{
			name:        "entity treated as separator",
			text:        "foo&nbsp;kys",
			wantClean:   false,
			wantMatched: []string{"kys"},
		},
		{
			name:        "upper case entity",
			text:        "foo&NBSP;kys",
			wantClean:   false,
			wantMatched: []string{"kys"},
		},
		{
			name:        "tag splits word into two tokens",
			text:        "cla<i>ss</i>",
			wantClean:   true,
			wantMatched: []string{},
		},
		{
			name:        "multiple matches keep term order",
			text:        "fuck off and buy now, kys",
			wantClean:   false,
			wantMatched: []string{"kys", "fuck", "buy now"},
		},
		{
			name:        "metacharacters are literal",
			text:        "c and more",
			wantClean:   true,
			wantMatched: []string{},
		},
		{
			name:        "punctuation bounded",
			text:        "(ass)",
			wantClean:   false,
			wantMatched: []string{"ass"},
		},
		{
			name:        "empty text",
			text:        "",
			wantClean:   true,
			wantMatched: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := newTestFilter(t, terms)

			got := f.Check(context.Background(), tt.text)

			if got.Clean != tt.wantClean {
				t.Errorf("Clean = %v, want %v", got.Clean, tt.wantClean)
			}
			if diff := cmp.Diff(tt.wantMatched, got.Matched); diff != "" {
				t.Errorf("Matched mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_CheckExampleScenarios(t *testing.T) {
	t.Run("kys in a sentence", func(t *testing.T) {
		f, _, _ := newTestFilter(t, []string{"kill yourself", "kys"})
		got := f.Check(context.Background(), "please don't say things like that to anyone, kys")
		want := Result{Clean: false, Matched: []string{"kys"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Check mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("classic is clean", func(t *testing.T) {
		f, _, _ := newTestFilter(t, []string{"ass"})
		got := f.Check(context.Background(), "this is a classic example")
		if !got.Clean {
			t.Errorf("expected clean, matched %v", got.Matched)
		}
	})
}

func TestFilter_FilterError(t *testing.T) {
	f, _, _ := newTestFilter(t, []string{"kys", "secretterm"})

	t.Run("clean text returns nil", func(t *testing.T) {
		if err := f.FilterError(context.Background(), "hello world"); err != nil {
			t.Fatalf("FilterError() = %v, want nil", err)
		}
	})

	t.Run("violation does not reveal terms", func(t *testing.T) {
		err := f.FilterError(context.Background(), "kys and secretterm")
		if err == nil {
			t.Fatal("expected violation error")
		}
		if err.Error() != ViolationMessage {
			t.Errorf("message = %q, want %q", err.Error(), ViolationMessage)
		}
		for _, term := range []string{"kys", "secretterm"} {
			if strings.Contains(err.Error(), term) {
				t.Errorf("message leaks term %q", term)
			}
		}
		if !errors.Is(err, ErrProhibitedContent) {
			t.Error("expected errors.Is(err, ErrProhibitedContent)")
		}

		v, ok := IsViolation(err)
		if !ok {
			t.Fatal("expected *ViolationError")
		}
		if diff := cmp.Diff([]string{"kys", "secretterm"}, v.Matched()); diff != "" {
			t.Errorf("Matched mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestFilter_TermsCachedWithinTTL(t *testing.T) {
	f, src, clock := newTestFilter(t, []string{"kys"})
	ctx := context.Background()

	first := f.Terms(ctx)
	clock.Advance(30 * time.Second)
	second := f.Terms(ctx)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Terms changed within TTL (-first +second):\n%s", diff)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("store fetched %d times, want 1", got)
	}
}

func TestFilter_TermsRefreshAfterTTL(t *testing.T) {
	f, src, clock := newTestFilter(t, []string{"kys"})
	ctx := context.Background()

	f.Terms(ctx)
	src.set([]string{"kys", "ass"}, nil)
	clock.Advance(60 * time.Second)

	got := f.Terms(ctx)
	if diff := cmp.Diff([]string{"kys", "ass"}, got); diff != "" {
		t.Errorf("Terms mismatch (-want +got):\n%s", diff)
	}
	if calls := src.calls.Load(); calls != 2 {
		t.Errorf("store fetched %d times, want 2", calls)
	}
}

func TestFilter_InvalidateForcesFetch(t *testing.T) {
	f, src, _ := newTestFilter(t, []string{"kys"})
	ctx := context.Background()

	f.Terms(ctx)
	src.set([]string{"kys", "newterm"}, nil)
	f.Invalidate()

	got := f.Terms(ctx)
	if diff := cmp.Diff([]string{"kys", "newterm"}, got); diff != "" {
		t.Errorf("Terms mismatch (-want +got):\n%s", diff)
	}
	if calls := src.calls.Load(); calls != 2 {
		t.Errorf("store fetched %d times, want 2", calls)
	}
	if res := f.Check(ctx, "a newterm here"); res.Clean {
		t.Error("expected newly added term to match without waiting for TTL")
	}
}

func TestFilter_RefreshFailureServesLastKnownGood(t *testing.T) {
	f, src, clock := newTestFilter(t, []string{"kys"})
	ctx := context.Background()

	f.Terms(ctx)
	src.set(nil, errors.New("connection refused"))
	clock.Advance(2 * time.Minute)

	got := f.Terms(ctx)
	if diff := cmp.Diff([]string{"kys"}, got); diff != "" {
		t.Errorf("Terms mismatch (-want +got):\n%s", diff)
	}
	if res := f.Check(ctx, "kys"); res.Clean {
		t.Error("stale list should still moderate")
	}

	// Still stale: every call retries the store.
	before := src.calls.Load()
	f.Terms(ctx)
	if src.calls.Load() == before {
		t.Error("expected a retry while the cache is stale")
	}
}

func TestFilter_InvalidateThenFailureKeepsList(t *testing.T) {
	f, src, _ := newTestFilter(t, []string{"kys"})
	ctx := context.Background()

	f.Terms(ctx)
	src.set(nil, errors.New("timeout"))
	f.Invalidate()

	if res := f.Check(ctx, "kys"); res.Clean {
		t.Error("invalidate followed by a failed refresh must keep the last known list")
	}
}

func TestFilter_EmptyCacheFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("store down")}

	t.Run("fail open", func(t *testing.T) {
		f := New(src, DefaultConfig())
		ctx := context.Background()

		if got := f.Refresh(ctx); len(got) != 0 {
			t.Errorf("Refresh() = %v, want empty", got)
		}
		if err := f.FilterError(ctx, "anything"); err != nil {
			t.Errorf("FilterError() = %v, want nil", err)
		}
		if err := f.Ready(ctx); err == nil {
			t.Error("Ready() should fail before the first load")
		}
	})

	t.Run("fail closed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FailMode = FailClosed
		f := New(src, cfg)

		err := f.FilterError(context.Background(), "anything")
		if !errors.Is(err, ErrModerationUnavailable) {
			t.Fatalf("FilterError() = %v, want ErrModerationUnavailable", err)
		}
		if _, ok := IsViolation(err); ok {
			t.Error("unavailability must not be reported as a violation")
		}
	})

	t.Run("fail closed recovers", func(t *testing.T) {
		src := &fakeSource{err: errors.New("store down")}
		cfg := DefaultConfig()
		cfg.FailMode = FailClosed
		f := New(src, cfg)
		ctx := context.Background()

		if err := f.FilterError(ctx, "hello"); err == nil {
			t.Fatal("expected unavailable error")
		}
		src.set([]string{"kys"}, nil)
		if err := f.FilterError(ctx, "hello"); err != nil {
			t.Errorf("FilterError() = %v, want nil after recovery", err)
		}
		if err := f.Ready(ctx); err != nil {
			t.Errorf("Ready() = %v, want nil", err)
		}
	})
}

func TestFilter_ConcurrentMissesShareFetch(t *testing.T) {
	src := &fakeSource{words: []string{"kys"}, delay: 50 * time.Millisecond}
	f := New(src, DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := f.Check(context.Background(), "kys"); res.Clean {
				t.Error("expected match")
			}
		}()
	}
	wg.Wait()

	if calls := src.calls.Load(); calls != 1 {
		t.Errorf("store fetched %d times, want 1", calls)
	}
}

// gatedSource reads its words, then holds the first fetch until release
// is closed.
type gatedSource struct {
	mu      sync.Mutex
	words   []string
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedSource(words ...string) *gatedSource {
	return &gatedSource{
		words:   words,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedSource) Words(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	words := append([]string(nil), s.words...)
	s.mu.Unlock()

	if s.calls.Add(1) == 1 {
		close(s.entered)
		<-s.release
	}
	return words, nil
}

func (s *gatedSource) set(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = words
}

func TestFilter_InvalidateDuringFetch(t *testing.T) {
	tests := []struct {
		name string
		// readDuringFetch calls Terms after Invalidate while the first
		// fetch is still blocked.
		readDuringFetch bool
	}{
		{name: "read while stale fetch is in flight", readDuringFetch: true},
		{name: "read after stale fetch completes", readDuringFetch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			src := newGatedSource("old")
			f := New(src, DefaultConfig(), WithClock(newFakeClock().Now))

			done := make(chan struct{})
			go func() {
				defer close(done)
				f.Terms(ctx)
			}()
			<-src.entered

			src.set("old", "kys")
			f.Invalidate()

			want := []string{"old", "kys"}
			if tt.readDuringFetch {
				if diff := cmp.Diff(want, f.Terms(ctx)); diff != "" {
					t.Errorf("Terms() after Invalidate mismatch (-want +got):\n%s", diff)
				}
			}

			close(src.release)
			<-done

			if diff := cmp.Diff(want, f.Terms(ctx)); diff != "" {
				t.Errorf("Terms() mismatch (-want +got):\n%s", diff)
			}
			if res := f.Check(ctx, "kys"); res.Clean {
				t.Error("term added before Invalidate was not enforced")
			}
			if calls := src.calls.Load(); calls != 2 {
				t.Errorf("store fetched %d times, want 2", calls)
			}
		})
	}
}

func TestFilter_TermsReturnsCopy(t *testing.T) {
	f, _, _ := newTestFilter(t, []string{"kys"})
	ctx := context.Background()

	terms := f.Terms(ctx)
	terms[0] = "mutated"

	if res := f.Check(ctx, "kys"); res.Clean {
		t.Error("mutating the returned slice must not affect the cache")
	}
}

func TestFilter_RefreshCancelledCallerDoesNotAbortFetch(t *testing.T) {
	f, _, _ := newTestFilter(t, []string{"kys"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := f.Refresh(ctx); len(got) != 1 {
		t.Errorf("Refresh() = %v, want one term", got)
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	checks    int
	refreshOK int
	hits      int
	misses    int
}

func (o *recordingObserver) ObserveCheck(bool, int, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checks++
}

func (o *recordingObserver) ObserveRefresh(ok bool, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ok {
		o.refreshOK++
	}
}

func (o *recordingObserver) ObserveCacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestFilter_Observer(t *testing.T) {
	obs := &recordingObserver{}
	f := New(&fakeSource{words: []string{"kys"}}, DefaultConfig(), WithObserver(obs))
	ctx := context.Background()

	f.Check(ctx, "a")
	f.Check(ctx, "b")

	if obs.checks != 2 {
		t.Errorf("checks = %d, want 2", obs.checks)
	}
	if obs.refreshOK != 1 {
		t.Errorf("refreshes = %d, want 1", obs.refreshOK)
	}
	if obs.misses != 1 || obs.hits != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", obs.hits, obs.misses)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.FetchTimeout = 0 }, wantErr: true},
		{name: "bad mode", mutate: func(c *Config) { c.FailMode = "sometimes" }, wantErr: true},
		{name: "fail closed", mutate: func(c *Config) { c.FailMode = FailClosed }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
