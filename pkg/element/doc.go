// Package element provides the immutable tree descriptions that components
// return and the engine reconciles.
//
// An Element is a pair of a type and a props map. The type is a host tag
// name ("div"), a Component function, or the reserved TextType marker.
// Children live in props under the reserved "children" key:
//
//	el := element.CreateElement("div", element.Props{"id": "main"},
//	    element.CreateElement("h1", nil, "Title"),
//	    count,                  // numbers and strings become text elements
//	    element.CreateElement(Counter, element.Props{"start": 10}),
//	)
//
// Elements are recreated on every render and never mutated after
// construction. Matching across renders is purely positional: the engine
// compares the i-th new child with the i-th previous child using SameType.
//
// # Event Handlers
//
// Props whose key starts with "on" followed by at least one character are
// event handlers. The event name is the lower-cased remainder, so "onClick"
// attaches a "click" listener. See EventName.
package element
