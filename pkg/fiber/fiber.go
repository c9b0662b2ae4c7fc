package fiber

import (
	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/host"
)

// EffectTag says what the committer must do with a fiber's host node.
type EffectTag uint8

const (
	TagNone      EffectTag = iota // root fibers
	TagPlacement                  // new host node to append
	TagUpdate                     // existing host node, reconcile props
	TagDeletion                   // queued for removal
)

// String returns the string representation of the EffectTag.
func (t EffectTag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagPlacement:
		return "placement"
	case TagUpdate:
		return "update"
	case TagDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Fiber is one node of the shadow tree. Links to other fibers are IDs into
// the owning engine's arena.
type Fiber struct {
	id        ID
	Type      any // nil for the root, string tag, element.TextType or element.Component
	Props     element.Props
	Node      host.Node // host node; nil for components
	Tag       EffectTag
	parent    ID
	child     ID
	sibling   ID
	alternate ID

	stateHooks  []*stateHook
	effectHooks []*effectHook
	hookKinds   []HookKind
	owner       *hookOwner // components only; shared by every render of one instance

	committed bool
}

// ID returns the fiber's arena ID.
func (f *Fiber) ID() ID { return f.id }

// Parent returns the parent fiber's ID.
func (f *Fiber) Parent() ID { return f.parent }

// Child returns the first child's ID.
func (f *Fiber) Child() ID { return f.child }

// Sibling returns the next sibling's ID.
func (f *Fiber) Sibling() ID { return f.sibling }

// Alternate returns the ID of the fiber this one was reconciled against.
// It is zero on committed fibers.
func (f *Fiber) Alternate() ID { return f.alternate }

// IsComponent reports whether the fiber is a function component.
func (f *Fiber) IsComponent() bool {
	switch f.Type.(type) {
	case element.Component, func(element.Props) *element.Element:
		return true
	}
	return false
}

// Name returns a display name for the fiber's type.
func (f *Fiber) Name() string {
	return element.TypeName(f.Type)
}

// HookCount returns the number of state and effect hooks the fiber used
// on its last render.
func (f *Fiber) HookCount() (state, effect int) {
	return len(f.stateHooks), len(f.effectHooks)
}

// hookOwner tracks the committed fiber of one component instance. Setters
// hold the owner rather than a fiber ID, so they keep working after the
// component re-renders. current is zero before the first commit and after
// the instance is removed.
type hookOwner struct {
	current ID
}

// stateHook is one UseState slot.
type stateHook struct {
	state any
	queue []func(any) any
}

// effectHook is one UseEffect slot.
type effectHook struct {
	callback func() Cleanup
	deps     []any
	cleanup  Cleanup
}
