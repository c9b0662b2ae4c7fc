package fiber

import (
	"log/slog"
	"time"

	"github.com/vango-dev/mini/internal/errors"
	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
)

// DefaultYieldThreshold is the idle time below which the work loop yields.
const DefaultYieldThreshold = time.Millisecond

// State is the engine's position in the pass lifecycle.
type State uint8

const (
	StateIdle       State = iota // no pass in flight
	StateWorking                 // a WIP tree is being built
	StateCommitting              // the WIP tree is being applied
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWorking:
		return "working"
	case StateCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l.With("component", "fiber")
		}
	}
}

// WithObserver adds an observer for pass lifecycle events.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithDebugHooks enables hook order validation.
func WithDebugHooks(enabled bool) Option {
	return func(e *Engine) {
		e.debugHooks = enabled
	}
}

// WithYieldThreshold sets the remaining idle time below which the work
// loop stops performing units. Default: DefaultYieldThreshold.
func WithYieldThreshold(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.yieldThreshold = d
		}
	}
}

type passInfo struct {
	kind    PassKind
	started time.Time
	units   int
}

// Engine owns a fiber tree and drives passes over it against one Host.
type Engine struct {
	host           host.Host
	arena          arena
	logger         *slog.Logger
	observers      []Observer
	debugHooks     bool
	yieldThreshold time.Duration

	state     State
	current   ID
	wipRoot   ID
	nextUnit  ID
	deletions []ID
	pass      passInfo

	// mutating is set while a unit or a commit runs. Pass requests made
	// then are deferred until it finishes.
	mutating bool
	deferred []func()
}

// New creates an Engine that mutates h.
func New(h host.Host, opts ...Option) *Engine {
	e := &Engine{
		host:           h,
		logger:         slog.Default().With("component", "fiber"),
		yieldThreshold: DefaultYieldThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render schedules a root pass that reconciles el into container. The
// pass replaces any pass still in flight. Work happens in WorkLoop.
func (e *Engine) Render(container host.Node, el *element.Element) error {
	if container == nil {
		return errors.New("E004")
	}
	e.requestPass(PassRoot, func() *Fiber {
		root := e.arena.alloc()
		root.Node = container
		root.Props = element.Props{element.ChildrenKey: []*element.Element{el}}
		root.alternate = e.current
		return root
	})
	return nil
}

// Start registers the work loop with s. The loop re-registers itself after
// every invocation, including one that panics.
func (e *Engine) Start(s idle.Scheduler) {
	var loop idle.Callback
	loop = func(d idle.Deadline) {
		defer s.RequestIdleCallback(loop)
		e.WorkLoop(d)
	}
	s.RequestIdleCallback(loop)
}

// Flush runs the work loop without a deadline until no pass is pending.
func (e *Engine) Flush() {
	for e.Busy() {
		e.WorkLoop(idle.Unlimited())
	}
}

// Busy reports whether a pass is in flight or waiting to start.
func (e *Engine) Busy() bool {
	return !e.wipRoot.IsZero() || len(e.deferred) > 0
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State { return e.state }

// Host returns the host the engine mutates.
func (e *Engine) Host() host.Host { return e.host }

// Root returns the committed root fiber, or nil before the first commit.
func (e *Engine) Root() *Fiber { return e.arena.get(e.current) }

// Fiber resolves id, returning nil if it was freed.
func (e *Engine) Fiber(id ID) *Fiber { return e.arena.get(id) }

// LiveFibers returns the number of fibers in the arena.
func (e *Engine) LiveFibers() int { return e.arena.live }

// Walk calls fn for the committed tree in depth-first order. Returning
// false from fn skips the fiber's children.
func (e *Engine) Walk(fn func(f *Fiber, depth int) bool) {
	var visit func(f *Fiber, depth int)
	visit = func(f *Fiber, depth int) {
		if !fn(f, depth) {
			return
		}
		for c := e.arena.get(f.child); c != nil; c = e.arena.get(c.sibling) {
			visit(c, depth+1)
		}
	}
	if root := e.Root(); root != nil {
		visit(root, 0)
	}
}

// Abort drops the pass in flight. The committed tree is left as it was.
func (e *Engine) Abort() {
	e.mutating = false
	e.deferred = nil
	if e.wipRoot.IsZero() {
		return
	}
	e.abandon()
	e.arena.sweep(e.current)
}

// requestPass starts a pass rooted at the fiber start returns. A nil root
// cancels the request.
func (e *Engine) requestPass(kind PassKind, start func() *Fiber) {
	if e.mutating {
		e.deferred = append(e.deferred, func() { e.requestPass(kind, start) })
		return
	}
	root := start()
	if root == nil {
		return
	}
	replaced := !e.wipRoot.IsZero()
	if replaced {
		e.abandon()
	}
	e.deletions = nil
	e.wipRoot = root.id
	e.nextUnit = root.id
	e.state = StateWorking
	e.pass = passInfo{kind: kind, started: time.Now()}
	if replaced {
		e.arena.sweep(e.current, e.wipRoot)
	}

	e.logger.Debug("pass scheduled", "kind", kind, "root", root.id, "type", root.Name())
	for _, o := range e.observers {
		o.PassStarted(kind)
	}
}

// requestSubtreePass re-renders the committed component fiber id.
func (e *Engine) requestSubtreePass(id ID) {
	e.requestPass(PassSubtree, func() *Fiber {
		src := e.arena.get(id)
		if src == nil || !src.committed {
			e.logger.Warn("update ignored", "error", errors.New("E003").Error(), "fiber", id)
			return nil
		}
		return e.cloneForPass(src)
	})
}

// cloneForPass makes the root of a subtree pass: a shallow copy of src in
// src's position, with src as its alternate. Hook slots are rebuilt by the
// render.
func (e *Engine) cloneForPass(src *Fiber) *Fiber {
	c := e.arena.alloc()
	c.Type = src.Type
	c.Props = src.Props
	c.Node = src.Node
	c.Tag = src.Tag
	c.parent = src.parent
	c.child = src.child
	c.sibling = src.sibling
	c.alternate = src.id
	return c
}

func (e *Engine) abandon() {
	kind := e.pass.kind
	e.logger.Debug("pass abandoned", "kind", kind, "units", e.pass.units)
	e.wipRoot = ID{}
	e.nextUnit = ID{}
	e.deletions = nil
	e.state = StateIdle
	for _, o := range e.observers {
		o.PassAbandoned(kind)
	}
}

func (e *Engine) runDeferred() {
	for len(e.deferred) > 0 {
		fn := e.deferred[0]
		e.deferred = e.deferred[1:]
		fn()
	}
}
