// Package demo is the counter app used by the mini CLI: a greeting and a
// Foo component with two states, three effects and a button.
package demo

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
)

// Greeting is the static text App renders before Foo.
const Greeting = "hi-mini-react"

// Demo holds one app instance and the log its effects write.
type Demo struct {
	logger *slog.Logger
	foo    element.Component

	mu      sync.Mutex
	log     []string
	renders int
}

// New creates a Demo. Effect log lines are also written to logger at
// debug level; a nil logger uses slog.Default().
func New(logger *slog.Logger) *Demo {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Demo{logger: logger.With("component", "demo")}
	// Bound once so every render sees the same component type.
	d.foo = d.Foo
	return d
}

// App returns the root element: a div holding the greeting and Foo.
func (d *Demo) App() *element.Element {
	return element.H("div", nil, Greeting, element.CreateElement(d.foo, nil))
}

// Foo renders a counter. Clicking the button increments the count and
// resets bar, in one batch.
func (d *Demo) Foo(element.Props) *element.Element {
	d.mu.Lock()
	d.renders++
	d.mu.Unlock()

	count, setCount := fiber.UseState(10)
	bar, setBar := fiber.UseState("bar")

	handleClick := func() {
		setCount(func(c int) int { return c + 1 })
		setBar(fiber.Set("bar"))
	}

	fiber.UseEffect(func() fiber.Cleanup {
		d.logf("init")
		return func() { d.logf("cleanup 0") }
	})
	fiber.UseEffect(func() fiber.Cleanup {
		d.logf("update %d", count)
		return func() { d.logf("cleanup 1") }
	}, count)
	fiber.UseEffect(func() fiber.Cleanup {
		d.logf("update %d", count)
		return func() { d.logf("cleanup 2") }
	}, count)

	return element.H("div", nil,
		element.H("h1", nil, "foo"),
		count,
		element.H("div", nil, bar),
		element.H("button", element.Props{"onClick": handleClick}, "click"),
	)
}

func (d *Demo) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	d.mu.Lock()
	d.log = append(d.log, line)
	d.mu.Unlock()
	d.logger.Debug("effect", "line", line)
}

// Log returns a copy of the effect log.
func (d *Demo) Log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.log...)
}

// ResetLog clears the effect log.
func (d *Demo) ResetLog() {
	d.mu.Lock()
	d.log = nil
	d.mu.Unlock()
}

// Renders returns how many times Foo has rendered.
func (d *Demo) Renders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renders
}
