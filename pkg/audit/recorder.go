package audit

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig configures the asynchronous violation recorder.
type RecorderConfig struct {
	// Enabled turns recording on. A disabled recorder accepts and
	// discards every event.
	Enabled bool

	// AsyncBuffer is the size of the write channel.
	// Default: 256
	AsyncBuffer int

	// WriteTimeout bounds both waiting for buffer space and each
	// storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  256,
		WriteTimeout: 5 * time.Second,
	}
}

// Event describes a rejected submission before it becomes a Violation.
type Event struct {
	Source    string
	SubjectID string
	UserID    string
	Content   string
	Matched   []string
}

// Recorder writes violations to storage in the background.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan *Violation
	wg     sync.WaitGroup

	written atomic.Uint64
	dropped atomic.Uint64
}

// NewRecorder creates a Recorder and starts its writer goroutine.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultRecorderConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultRecorderConfig().WriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.recorder"),
		now:     time.Now,
		queue:   make(chan *Violation, config.AsyncBuffer),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"enabled", config.Enabled,
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// Record enqueues a violation built from ev. It returns once the violation
// is buffered, not once it is stored.
func (r *Recorder) Record(ctx context.Context, ev Event) error {
	if !r.config.Enabled {
		return nil
	}
	if ev.Source == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidViolation)
	}

	v := &Violation{
		ID:          uuid.New().String(),
		Source:      ev.Source,
		SubjectID:   ev.SubjectID,
		UserID:      ev.UserID,
		Matched:     slices.Clone(ev.Matched),
		ContentHash: HashContent(ev.Content),
		CreatedAt:   r.now().UTC(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrRecorderClosed
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.queue <- v:
		r.logger.Debug("violation enqueued", "violation_id", v.ID, "source", v.Source)
		return nil
	case <-ctx.Done():
		r.dropped.Add(1)
		return ctx.Err()
	case <-timer.C:
		r.dropped.Add(1)
		r.logger.Error("audit buffer full, dropping violation",
			"violation_id", v.ID,
			"capacity", r.config.AsyncBuffer,
		)
		return ErrBufferFull
	}
}

// Stats returns the number of violations written and dropped so far.
func (r *Recorder) Stats() (written, dropped uint64) {
	return r.written.Load(), r.dropped.Load()
}

// Close stops accepting violations, drains the buffer and waits for the
// writer to finish. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()

	written, dropped := r.Stats()
	r.logger.Info("audit recorder shut down", "written", written, "dropped", dropped)
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for v := range r.queue {
		r.write(v)
	}
}

func (r *Recorder) write(v *Violation) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, v); err != nil {
		r.dropped.Add(1)
		r.logger.Error("failed to store violation",
			"violation_id", v.ID,
			"error", err,
		)
		return
	}
	r.written.Add(1)
}
