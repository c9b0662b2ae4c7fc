package idle

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// LoopConfig configures a Loop.
type LoopConfig struct {
	// FrameInterval is the time between idle periods.
	// Default: 16ms
	FrameInterval time.Duration

	// Budget is the length of each idle period.
	// Default: 10ms
	Budget time.Duration

	// QueueSize is the capacity of the task queue.
	// Default: 256
	QueueSize int

	// Logger receives panic reports. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultLoopConfig returns a LoopConfig with sensible defaults.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		FrameInterval: 16 * time.Millisecond,
		Budget:        10 * time.Millisecond,
		QueueSize:     256,
	}
}

// Loop is a Scheduler backed by a single goroutine. Tasks passed to Submit
// and idle callbacks all run on that goroutine.
type Loop struct {
	config LoopConfig
	logger *slog.Logger
	tasks  chan func()

	mu      sync.Mutex
	pending []Callback

	running atomic.Bool
	frames  atomic.Uint64
	panics  atomic.Uint64
}

// NewLoop creates a Loop. Zero fields in cfg take their defaults.
func NewLoop(cfg LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}
	if cfg.Budget <= 0 {
		cfg.Budget = def.Budget
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		config: cfg,
		logger: logger.With("component", "idle"),
		tasks:  make(chan func(), cfg.QueueSize),
	}
}

// RequestIdleCallback implements Scheduler.
func (l *Loop) RequestIdleCallback(cb Callback) {
	l.mu.Lock()
	l.pending = append(l.pending, cb)
	l.mu.Unlock()
}

// Submit queues fn to run on the loop goroutine. It returns false if the
// queue is full.
func (l *Loop) Submit(fn func()) bool {
	select {
	case l.tasks <- fn:
		return true
	default:
		l.logger.Warn("task queue full, discarding task")
		return false
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks and idle periods until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("idle: loop already running")
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(l.config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.tasks:
			l.safeRun(func() { fn() })
		case now := <-ticker.C:
			l.frame(now)
		}
	}
}

func (l *Loop) frame(start time.Time) {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	l.frames.Add(1)
	if len(batch) == 0 {
		return
	}
	d := At(start.Add(l.config.Budget))
	for _, cb := range batch {
		l.safeRun(func() { cb(d) })
	}
}

// safeRun runs fn with panic recovery.
func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Stats returns the number of frames run and panics recovered.
func (l *Loop) Stats() (frames, panics uint64) {
	return l.frames.Load(), l.panics.Load()
}
