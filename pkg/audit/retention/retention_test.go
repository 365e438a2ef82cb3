package retention

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"quillpress/wordguard/pkg/audit"
	"quillpress/wordguard/pkg/audit/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPruner_Prune(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	tests := []struct {
		name          string
		retentionDays int
		wantDeleted   int64
	}{
		{name: "unlimited", retentionDays: 0, wantDeleted: 0},
		{name: "30 days", retentionDays: 30, wantDeleted: 2},
		{name: "90 days", retentionDays: 90, wantDeleted: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			for i, age := range []int{1, 45, 120} {
				v := &audit.Violation{
					ID:        string(rune('a' + i)),
					Source:    audit.SourceComment,
					CreatedAt: now.Add(-time.Duration(age) * 24 * time.Hour),
				}
				if err := store.Store(ctx, v); err != nil {
					t.Fatal(err)
				}
			}

			p := NewPruner(store, &Config{RetentionDays: tt.retentionDays})
			p.now = func() time.Time { return now }

			deleted, err := p.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	p := NewPruner(storage.NewMemoryStorage(), &Config{RetentionDays: 30, PruneSchedule: "0 3 * * *"})
	s := NewScheduler(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler should be running")
	}
	next := s.NextRun()
	if next == nil || next.Hour() != 3 {
		t.Errorf("NextRun() = %v, want a 03:00 run", next)
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler should stop when the context is cancelled")
	}
}

func TestScheduler_NotScheduled(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "empty schedule", config: &Config{RetentionDays: 30}},
		{name: "unlimited retention", config: &Config{PruneSchedule: "0 3 * * *"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(NewPruner(storage.NewMemoryStorage(), tt.config))
			if err := s.Start(context.Background()); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			if s.IsRunning() {
				t.Error("scheduler should not run")
			}
			if s.NextRun() != nil {
				t.Error("NextRun() should be nil")
			}
		})
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(NewPruner(storage.NewMemoryStorage(), &Config{RetentionDays: 1, PruneSchedule: "not a cron"}))
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
	if err := ValidateSchedule("*/5 * * * *"); err != nil {
		t.Errorf("ValidateSchedule() error = %v", err)
	}
	if err := ValidateSchedule("bogus"); err == nil {
		t.Error("ValidateSchedule(bogus) should fail")
	}
}
