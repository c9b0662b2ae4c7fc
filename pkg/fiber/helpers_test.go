package fiber

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/mini/internal/errors"
	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
)

type harness struct {
	eng       *Engine
	rec       *host.Recorder
	container *host.MemoryNode
	sched     *idle.Manual
	commits   []CommitStats
	started   []PassKind
	abandoned []PassKind
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	mem := host.NewMemoryHost()
	h := &harness{
		rec:       host.NewRecorder(mem),
		container: mem.NewContainer(),
		sched:     idle.NewManual(),
	}
	obs := ObserverFuncs{
		OnPassStarted:   func(k PassKind) { h.started = append(h.started, k) },
		OnPassAbandoned: func(k PassKind) { h.abandoned = append(h.abandoned, k) },
		OnCommitted:     func(s CommitStats) { h.commits = append(h.commits, s) },
	}
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithObserver(obs),
	}, opts...)
	h.eng = New(h.rec, opts...)
	h.eng.Start(h.sched)
	return h
}

// flush runs idle callbacks until no pass is pending.
func (h *harness) flush() {
	h.sched.Drain(h.eng.Busy)
}

func (h *harness) render(t *testing.T, el *element.Element) {
	t.Helper()
	if err := h.eng.Render(h.container, el); err != nil {
		t.Fatalf("Render: %v", err)
	}
	h.flush()
}

func (h *harness) markup() string {
	return h.container.String()
}

func (h *harness) click(t *testing.T) {
	t.Helper()
	btn := h.container.FindByType("button")
	if btn == nil {
		t.Fatalf("no button in %s", h.markup())
	}
	if btn.Dispatch("click", nil) == 0 {
		t.Fatalf("button has no click handler")
	}
}

// expectPanicCode runs fn and checks that it panics with an *errors.Error
// carrying code.
func expectPanicCode(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %s", code)
		}
		err, ok := r.(error)
		if !ok || !errors.HasCode(err, code) {
			t.Fatalf("panic = %v, want code %s", r, code)
		}
	}()
	fn()
}
