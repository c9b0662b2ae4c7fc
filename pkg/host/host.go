package host

import (
	"github.com/vango-dev/mini/pkg/element"
)

// TextNode is the node type used for text content.
const TextNode = element.TextType

// Node is an opaque host node. Each Host decides its concrete type.
type Node any

// Host is the set of primitive operations a renderer backend provides.
// Implementations are called from a single goroutine (the engine's loop).
type Host interface {
	// CreateNode creates a detached node. typ is a tag name or TextNode.
	CreateNode(typ string) Node

	// SetProperty assigns a named property on a node.
	SetProperty(n Node, name string, value any)

	// RemoveProperty removes a named property from a node.
	RemoveProperty(n Node, name string)

	// AddEventListener attaches handler for event on n.
	AddEventListener(n Node, event string, handler any)

	// RemoveEventListener detaches handler for event from n.
	RemoveEventListener(n Node, event string, handler any)

	// AppendChild appends child as the last child of parent.
	AppendChild(parent, child Node)

	// RemoveChild removes child from parent.
	RemoveChild(parent, child Node)
}

// Event is delivered to handlers when a host dispatches an event.
type Event struct {
	Type   string // event name, e.g. "click"
	Target Node   // node the event was dispatched on
	Value  any    // event payload (input value, key, ...), may be nil
}

// Invoke calls handler with ev. Supported handler shapes are func(),
// func(Event), func(*Event) and func(any). It returns false if handler has
// none of these shapes.
func Invoke(handler any, ev Event) bool {
	switch h := handler.(type) {
	case func():
		h()
	case func(Event):
		h(ev)
	case func(*Event):
		h(&ev)
	case func(any):
		h(ev.Value)
	default:
		return false
	}
	return true
}
