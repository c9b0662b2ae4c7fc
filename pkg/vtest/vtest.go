package vtest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
)

// Harness is one engine rendering into a memory host.
type Harness struct {
	t *testing.T

	Engine    *fiber.Engine
	Host      *host.MemoryHost
	Recorder  *host.Recorder
	Container *host.MemoryNode
	Scheduler *idle.Manual

	// Commits holds the stats of every commit, oldest first.
	Commits []fiber.CommitStats
}

// New creates a Harness with nothing mounted. Engine logs are discarded
// unless opts sets a logger.
func New(t *testing.T, opts ...fiber.Option) *Harness {
	t.Helper()
	mem := host.NewMemoryHost()
	h := &Harness{
		t:         t,
		Host:      mem,
		Recorder:  host.NewRecorder(mem),
		Container: mem.NewContainer(),
		Scheduler: idle.NewManual(),
	}
	opts = append([]fiber.Option{
		fiber.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		fiber.WithObserver(fiber.ObserverFuncs{
			OnCommitted: func(s fiber.CommitStats) { h.Commits = append(h.Commits, s) },
		}),
	}, opts...)
	h.Engine = fiber.New(h.Recorder, opts...)
	h.Engine.Start(h.Scheduler)
	return h
}

// Mount creates a Harness and renders el to completion.
//
// Example:
//
//	h := vtest.Mount(t, mini.CreateElement(App, nil))
func Mount(t *testing.T, el *element.Element, opts ...fiber.Option) *Harness {
	t.Helper()
	h := New(t, opts...)
	h.Render(el)
	h.Flush()
	return h
}

// Render schedules el to replace the mounted tree. Call Flush or
// StepUnits to do the work.
func (h *Harness) Render(el *element.Element) {
	h.t.Helper()
	if err := h.Engine.Render(h.Container, el); err != nil {
		h.t.Fatalf("Render: %v", err)
	}
}

// Unmount renders nothing and flushes, running every cleanup.
func (h *Harness) Unmount() {
	h.t.Helper()
	h.Render(nil)
	h.Flush()
}

// Flush runs idle periods until the engine is idle and returns how many
// ran.
func (h *Harness) Flush() int {
	return h.Scheduler.Drain(h.Engine.Busy)
}

// StepUnits runs one idle period that allows n units of work.
func (h *Harness) StepUnits(n int) {
	h.Scheduler.Step(idle.Countdown(n))
}

// Find returns the first node of the given type, failing the test if
// there is none.
func (h *Harness) Find(typ string) *host.MemoryNode {
	h.t.Helper()
	n := h.Container.FindByType(typ)
	if n == nil {
		h.t.Fatalf("no <%s> in %s", typ, truncate(h.Markup(), 500))
	}
	return n
}

// Dispatch invokes the event handlers of the first node of the given type.
// It fails the test if no handler ran. Work the handlers schedule is not
// flushed.
func (h *Harness) Dispatch(typ, event string, value any) {
	h.t.Helper()
	if h.Find(typ).Dispatch(event, value) == 0 {
		h.t.Fatalf("<%s> has no %s handler", typ, event)
	}
}

// Click dispatches a click to the first node of the given type.
func (h *Harness) Click(typ string) {
	h.t.Helper()
	h.Dispatch(typ, "click", nil)
}

// Markup returns the committed host tree as markup.
func (h *Harness) Markup() string {
	return h.Container.String()
}

// Text returns the committed text content.
func (h *Harness) Text() string {
	return h.Container.Text()
}

// LastCommit returns the most recent commit's stats, failing the test if
// nothing has committed.
func (h *Harness) LastCommit() fiber.CommitStats {
	h.t.Helper()
	if len(h.Commits) == 0 {
		h.t.Fatal("nothing committed")
	}
	return h.Commits[len(h.Commits)-1]
}

// ExpectMarkup asserts that the committed markup equals want.
func ExpectMarkup(t *testing.T, h *Harness, want string) {
	t.Helper()
	if got := h.Markup(); got != want {
		t.Errorf("markup = %s, want %s", truncate(got, 500), want)
	}
}

// ExpectContains asserts that the committed markup contains expected.
//
// Example:
//
//	vtest.ExpectContains(t, h, "Welcome")
func ExpectContains(t *testing.T, h *Harness, expected string) {
	t.Helper()
	markup := h.Markup()
	if !strings.Contains(markup, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(markup, 500))
	}
}

// ExpectNotContains asserts that the committed markup does not contain
// unexpected.
func ExpectNotContains(t *testing.T, h *Harness, unexpected string) {
	t.Helper()
	markup := h.Markup()
	if strings.Contains(markup, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(markup, 500))
	}
}

// ExpectElement asserts that the committed tree has a node of type tag.
//
// Example:
//
//	vtest.ExpectElement(t, h, "button")
func ExpectElement(t *testing.T, h *Harness, tag string) {
	t.Helper()
	if h.Container.FindByType(tag) == nil {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(h.Markup(), 500))
	}
}

// ExpectAttribute asserts that the committed markup contains an attribute
// value.
//
// Example:
//
//	vtest.ExpectAttribute(t, h, "class", "btn-primary")
func ExpectAttribute(t *testing.T, h *Harness, attr, value string) {
	t.Helper()
	markup := h.Markup()
	needle := attr + `="` + value + `"`
	if !strings.Contains(markup, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(markup, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
