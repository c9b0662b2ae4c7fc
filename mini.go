// Package mini provides the public API for the mini reconciliation engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/mini"
//
// Usage:
//
//	func Counter(mini.Props) *mini.Element {
//	    count, setCount := mini.UseState(0)
//	    mini.UseEffect(func() mini.Cleanup {
//	        slog.Info("count changed", "count", count)
//	        return nil
//	    }, count)
//	    return mini.H("button", mini.Props{
//	        "onClick": func() { setCount(func(c int) int { return c + 1 }) },
//	    }, count)
//	}
//
//	mem := host.NewMemoryHost()
//	root := mini.CreateRoot(mem, mem.NewContainer(), idle.NewManual())
//	root.Render(mini.CreateElement(mini.Component(Counter), nil))
package mini

import (
	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
)

// =============================================================================
// Elements
// =============================================================================

type Element = element.Element
type Props = element.Props
type Component = element.Component

// CreateElement builds an element from a tag or component, props and
// children.
var CreateElement = element.CreateElement

// H builds a host element.
var H = element.H

// Text builds a text element.
var Text = element.Text

// =============================================================================
// Hooks
// =============================================================================

type Cleanup = fiber.Cleanup

// UseState returns the component's state and a setter for it.
func UseState[T any](initial T) (T, fiber.Setter[T]) {
	return fiber.UseState(initial)
}

// Set returns a state action that replaces the state with v.
func Set[T any](v T) fiber.Action[T] {
	return fiber.Set(v)
}

// UseEffect runs callback after commit, again whenever deps change.
var UseEffect = fiber.UseEffect

// UseRerender returns a function that re-renders the calling component.
var UseRerender = fiber.UseRerender

// =============================================================================
// Engine options
// =============================================================================

type Option = fiber.Option

var WithLogger = fiber.WithLogger
var WithObserver = fiber.WithObserver
var WithDebugHooks = fiber.WithDebugHooks
var WithYieldThreshold = fiber.WithYieldThreshold
