package element

import (
	"fmt"
	"reflect"
)

// TextType is the reserved element type for text nodes.
// Text elements carry their content in the "nodeValue" prop.
const TextType = "#text"

// Reserved prop keys.
const (
	ChildrenKey  = "children"
	NodeValueKey = "nodeValue"
)

// Props holds an element's properties, event handlers and children.
type Props map[string]any

// Children returns the child elements stored under the "children" key.
// Entries may be nil: a nil child keeps its position but renders nothing.
func (p Props) Children() []*Element {
	if p == nil {
		return nil
	}
	children, _ := p[ChildrenKey].([]*Element)
	return children
}

// Component is a function component: a pure function from props to an
// element tree. Components may call hooks while they are evaluated.
type Component func(props Props) *Element

// Element is an immutable description of one tree position.
type Element struct {
	Type  any   // string tag, Component, or TextType
	Props Props // never nil for elements built with CreateElement
}

// IsText returns true if the element is a text element.
func (e *Element) IsText() bool {
	if e == nil {
		return false
	}
	s, ok := e.Type.(string)
	return ok && s == TextType
}

// Tag returns the host tag for host and text elements, or "" for components.
func (e *Element) Tag() string {
	if e == nil {
		return ""
	}
	s, _ := e.Type.(string)
	return s
}

// Component returns the component function, or nil for host elements.
func (e *Element) Component() Component {
	if e == nil {
		return nil
	}
	switch c := e.Type.(type) {
	case Component:
		return c
	case func(Props) *Element:
		return c
	}
	return nil
}

// String returns a short description of the element for logs and tests.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.IsText() {
		return fmt.Sprintf("%q", fmt.Sprint(e.Props[NodeValueKey]))
	}
	return fmt.Sprintf("<%s>", TypeName(e.Type))
}

// TypeName returns a readable name for an element or fiber type.
func TypeName(t any) string {
	switch v := t.(type) {
	case nil:
		return "root"
	case string:
		return v
	case Component, func(Props) *Element:
		return funcName(v)
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ValidType reports whether t can be used as an element type.
func ValidType(t any) bool {
	switch v := t.(type) {
	case string:
		return v != ""
	case Component:
		return v != nil
	case func(Props) *Element:
		return v != nil
	}
	return false
}

// Text creates a text element holding v as its node value.
func Text(v any) *Element {
	return &Element{
		Type: TextType,
		Props: Props{
			NodeValueKey: v,
			ChildrenKey:  []*Element{},
		},
	}
}

// CreateElement builds an element of the given type.
//
// The props map is copied, never retained. Children may be *Element,
// []*Element, []any, strings or numbers (wrapped with Text), or nil/bool
// (positional holes that render nothing). Other values are ignored.
func CreateElement(typ any, props Props, children ...any) *Element {
	if fn, ok := typ.(func(Props) *Element); ok {
		typ = Component(fn)
	}
	p := make(Props, len(props)+1)
	for k, v := range props {
		if k == ChildrenKey {
			continue
		}
		p[k] = v
	}

	kids := make([]*Element, 0, len(children))
	for _, child := range children {
		kids = appendChild(kids, child)
	}
	p[ChildrenKey] = kids

	return &Element{Type: typ, Props: p}
}

// H is shorthand for CreateElement with a host tag.
func H(tag string, props Props, children ...any) *Element {
	return CreateElement(tag, props, children...)
}

// appendChild normalises one child argument into kids.
func appendChild(kids []*Element, child any) []*Element {
	switch v := child.(type) {
	case nil, bool:
		return append(kids, nil)
	case *Element:
		return append(kids, v)
	case []*Element:
		return append(kids, v...)
	case []any:
		for _, c := range v {
			kids = appendChild(kids, c)
		}
		return kids
	case string:
		return append(kids, Text(v))
	}

	if isNumber(child) {
		return append(kids, Text(child))
	}
	return kids
}

// isNumber reports whether v is a Go integer or floating point value.
func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
