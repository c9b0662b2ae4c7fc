package fiber

import (
	"github.com/vango-dev/mini/internal/errors"
	"github.com/vango-dev/mini/pkg/element"
)

// Cleanup undoes an effect. It runs before the effect re-runs and when
// the component is removed.
type Cleanup func()

// Action computes a new state from the current one.
type Action[T any] func(T) T

// Setter queues a state change and schedules a re-render of the owning
// component.
type Setter[T any] func(Action[T])

// Set returns an Action that replaces the state with v.
func Set[T any](v T) Action[T] {
	return func(T) T { return v }
}

// Update returns fn as an Action.
func Update[T any](fn func(T) T) Action[T] {
	return fn
}

// UseState returns the component's state for this hook slot and a setter
// for it. On the first render the state is initial. Later renders apply
// queued actions oldest first.
//
// The setter is stable for the life of the component instance: one
// captured on the first render still works after later renders. A setter
// whose action yields a value identical to the current state does
// nothing. A setter called after its component was removed logs a warning
// and does nothing.
//
// Example:
//
//	count, setCount := fiber.UseState(10)
//	onClick := func() { setCount(func(c int) int { return c + 1 }) }
func UseState[T any](initial T) (T, Setter[T]) {
	rc := currentRender("UseState")
	rc.track(HookState)

	e, f, idx := rc.engine, rc.fiber, rc.stateIndex
	rc.stateIndex++

	slot := &stateHook{state: initial}
	if rc.alt != nil && idx < len(rc.alt.stateHooks) {
		old := rc.alt.stateHooks[idx]
		slot.state = old.state
		slot.queue = old.queue
	}
	for _, action := range slot.queue {
		slot.state = action(slot.state)
	}
	slot.queue = nil
	f.stateHooks = append(f.stateHooks, slot)

	owner := f.owner
	state, _ := slot.state.(T)
	return state, func(a Action[T]) {
		if a == nil {
			return
		}
		e.dispatch(owner.current, idx, func(s any) any {
			v, _ := s.(T)
			return a(v)
		})
	}
}

// dispatch queues action on state slot idx of fiber id.
func (e *Engine) dispatch(id ID, idx int, action func(any) any) {
	f := e.arena.get(id)
	if f == nil || !f.committed || idx >= len(f.stateHooks) {
		e.logger.Warn("state update ignored", "error", errors.New("E003").Error(), "fiber", id)
		return
	}
	slot := f.stateHooks[idx]
	if element.Identical(action(slot.state), slot.state) {
		return
	}
	slot.queue = append(slot.queue, action)
	e.requestSubtreePass(id)
}

// UseEffect registers callback to run after the commit that mounts the
// component. Later commits re-run it only when deps is non-empty and a dep
// differs from the previous render's; before re-running, the previous
// cleanup is called. With no deps the effect runs once, and its cleanup
// runs when the component is removed.
func UseEffect(callback func() Cleanup, deps ...any) {
	rc := currentRender("UseEffect")
	rc.track(HookEffect)
	if callback == nil {
		callback = func() Cleanup { return nil }
	}
	rc.effects = append(rc.effects, &effectHook{callback: callback, deps: deps})
}

// UseRerender returns a function that re-renders the calling component
// without changing its state.
func UseRerender() func() {
	rc := currentRender("UseRerender")
	e, owner := rc.engine, rc.fiber.owner
	return func() {
		e.requestSubtreePass(owner.current)
	}
}
