package mini

import (
	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
)

// Root is a render target: one engine bound to one host container.
type Root struct {
	engine    *fiber.Engine
	container host.Node
	sched     idle.Scheduler
}

// CreateRoot binds a new engine to container on h. If sched is non-nil the
// engine's work loop is registered with it and renders happen during idle
// time.
//
// With a nil sched, Render and Unmount complete synchronously, but nothing
// drives the passes that setters schedule: after dispatching an event the
// caller must call Flush to apply the resulting updates.
func CreateRoot(h host.Host, container host.Node, sched idle.Scheduler, opts ...Option) *Root {
	r := &Root{
		engine:    fiber.New(h, opts...),
		container: container,
		sched:     sched,
	}
	if sched != nil {
		r.engine.Start(sched)
	}
	return r
}

// Render schedules el to replace whatever the root currently shows.
func (r *Root) Render(el *element.Element) error {
	if err := r.engine.Render(r.container, el); err != nil {
		return err
	}
	if r.sched == nil {
		r.engine.Flush()
	}
	return nil
}

// Unmount removes the rendered tree, running every effect cleanup.
func (r *Root) Unmount() error {
	return r.Render(nil)
}

// Flush runs any pending pass to completion. Roots created without a
// scheduler call it after each event.
func (r *Root) Flush() {
	r.engine.Flush()
}

// Engine returns the root's engine.
func (r *Root) Engine() *fiber.Engine {
	return r.engine
}

// Container returns the host node the root renders into.
func (r *Root) Container() host.Node {
	return r.container
}
