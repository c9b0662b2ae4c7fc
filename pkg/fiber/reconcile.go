package fiber

import "github.com/vango-dev/mini/pkg/element"

// reconcileChildren builds parent's new child chain from children,
// matching each position against the alternate's child at the same
// position. A nil child occupies its position without producing a fiber.
func (e *Engine) reconcileChildren(parent *Fiber, children []*element.Element) {
	var old *Fiber
	if alt := e.arena.get(parent.alternate); alt != nil {
		old = e.arena.get(alt.child)
	}

	parent.child = ID{}
	var prev *Fiber
	for _, el := range children {
		var nf *Fiber
		if old != nil && el != nil && element.SameType(old.Type, el.Type) {
			nf = e.arena.alloc()
			nf.Type = el.Type
			nf.Props = el.Props
			nf.Node = old.Node
			nf.Tag = TagUpdate
			nf.alternate = old.id
		} else {
			if el != nil {
				nf = e.arena.alloc()
				nf.Type = el.Type
				nf.Props = el.Props
				nf.Tag = TagPlacement
			}
			if old != nil {
				e.queueDeletion(old)
			}
		}
		if old != nil {
			old = e.arena.get(old.sibling)
		}
		if nf == nil {
			continue
		}
		nf.parent = parent.id
		if prev == nil {
			parent.child = nf.id
		} else {
			prev.sibling = nf.id
		}
		prev = nf
	}

	for ; old != nil; old = e.arena.get(old.sibling) {
		e.queueDeletion(old)
	}
}

func (e *Engine) queueDeletion(f *Fiber) {
	f.Tag = TagDeletion
	e.deletions = append(e.deletions, f.id)
}
