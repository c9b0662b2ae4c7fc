package fiber

import "time"

// PassKind distinguishes full-tree passes from component re-renders.
type PassKind uint8

const (
	PassRoot    PassKind = iota // started by Engine.Render
	PassSubtree                 // started by a state setter or UseRerender
)

// String returns the string representation of the PassKind.
func (k PassKind) String() string {
	if k == PassRoot {
		return "root"
	}
	return "subtree"
}

// CommitStats summarises one committed pass.
type CommitStats struct {
	Kind       PassKind
	Units      int // fibers evaluated, across all idle callbacks
	Deletions  int // fibers queued for deletion
	Placements int // host nodes appended
	Updates    int // host nodes whose props changed
	EffectsRun int
	Cleanups   int
	Freed      int           // fibers released by the sweep
	LiveFibers int           // fibers alive after the sweep
	Duration   time.Duration // commit phase only
	Elapsed    time.Duration // from pass start to end of commit
}

// Observer receives pass lifecycle notifications. Calls are made on the
// engine's goroutine.
type Observer interface {
	PassStarted(kind PassKind)
	PassAbandoned(kind PassKind)
	Committed(stats CommitStats)
}

// ObserverFuncs adapts optional functions to Observer.
type ObserverFuncs struct {
	OnPassStarted   func(PassKind)
	OnPassAbandoned func(PassKind)
	OnCommitted     func(CommitStats)
}

func (o ObserverFuncs) PassStarted(kind PassKind) {
	if o.OnPassStarted != nil {
		o.OnPassStarted(kind)
	}
}

func (o ObserverFuncs) PassAbandoned(kind PassKind) {
	if o.OnPassAbandoned != nil {
		o.OnPassAbandoned(kind)
	}
}

func (o ObserverFuncs) Committed(stats CommitStats) {
	if o.OnCommitted != nil {
		o.OnCommitted(stats)
	}
}
