package fiber

import (
	"github.com/vango-dev/mini/internal/errors"
	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/idle"
)

// WorkLoop performs units of work while d reports at least the yield
// threshold, and commits once the WIP tree is complete. A panic inside a
// unit or the commit abandons the pass and is re-raised.
func (e *Engine) WorkLoop(d idle.Deadline) {
	e.runDeferred()
	if e.wipRoot.IsZero() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.Abort()
			panic(r)
		}
	}()

	for !e.nextUnit.IsZero() && d.TimeRemaining() >= e.yieldThreshold {
		unit := e.arena.get(e.nextUnit)
		e.mutating = true
		next := e.performUnit(unit)
		e.mutating = false
		e.pass.units++
		if e.staleSiblingGuard(next) {
			next = ID{}
		}
		e.nextUnit = next
		e.runDeferred()
	}

	if e.nextUnit.IsZero() && !e.wipRoot.IsZero() {
		e.commitRoot()
		e.runDeferred()
		return
	}
	if !e.wipRoot.IsZero() {
		e.logger.Debug("yielding", "units", e.pass.units, "next", e.nextUnit)
	}
}

// performUnit evaluates one fiber and returns the next unit.
func (e *Engine) performUnit(f *Fiber) ID {
	switch t := f.Type.(type) {
	case element.Component:
		e.updateFunctionComponent(f, t)
	case func(element.Props) *element.Element:
		e.updateFunctionComponent(f, t)
	case string, nil:
		e.updateHostComponent(f)
	default:
		panic(errors.New("E005").WithDetailf("got %T", f.Type))
	}
	return e.nextUnitOf(f)
}

// nextUnitOf returns f's first child, else the nearest sibling of f or an
// ancestor. The walk stops at the WIP root.
func (e *Engine) nextUnitOf(f *Fiber) ID {
	if !f.child.IsZero() {
		return f.child
	}
	for n := f; n != nil; n = e.arena.get(n.parent) {
		if n.id == e.wipRoot {
			return ID{}
		}
		if !n.sibling.IsZero() {
			return n.sibling
		}
	}
	return ID{}
}

// staleSiblingGuard reports whether next is the sibling a subtree pass
// root carries over from its source fiber. That fiber lies outside the
// pass and is never a unit of it.
//
// nextUnitOf already stops at the WIP root before reading its sibling, so
// the guard only fires if that walk changes. It is kept as a backstop.
func (e *Engine) staleSiblingGuard(next ID) bool {
	root := e.arena.get(e.wipRoot)
	return root != nil && !next.IsZero() && next == root.sibling
}

func (e *Engine) updateFunctionComponent(f *Fiber, comp element.Component) {
	rc := e.beginRender(f)
	defer endRender(rc)

	child := comp(f.Props)
	rc.finish()
	e.reconcileChildren(f, []*element.Element{child})
}

func (e *Engine) updateHostComponent(f *Fiber) {
	if f.Node == nil {
		f.Node = e.host.CreateNode(f.Type.(string))
		e.updateProps(f.Node, f.Props, nil)
	}
	e.reconcileChildren(f, f.Props.Children())
}
