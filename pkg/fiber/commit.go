package fiber

import (
	"time"

	"github.com/vango-dev/mini/internal/errors"
	"github.com/vango-dev/mini/pkg/element"
)

// commitRoot applies the finished WIP tree to the host, runs effects and
// makes the tree current.
func (e *Engine) commitRoot() {
	start := time.Now()
	e.state = StateCommitting
	e.mutating = true
	defer func() { e.mutating = false }()

	root := e.arena.get(e.wipRoot)
	stats := CommitStats{Kind: e.pass.kind, Units: e.pass.units}

	for _, id := range e.deletions {
		if f := e.arena.get(id); f != nil {
			e.commitDeletion(f, &stats)
			stats.Deletions++
		}
	}

	root.committed = true
	e.commitWork(e.arena.get(root.child), &stats)
	e.claimOwners(root)
	e.commitEffects(root, &stats)
	e.promote(root)

	e.deletions = nil
	e.wipRoot = ID{}
	e.nextUnit = ID{}
	stats.Freed = e.arena.sweep(e.current)
	stats.LiveFibers = e.arena.live
	e.state = StateIdle

	stats.Duration = time.Since(start)
	stats.Elapsed = time.Since(e.pass.started)
	e.logger.Debug("commit",
		"kind", stats.Kind,
		"units", stats.Units,
		"deletions", stats.Deletions,
		"placements", stats.Placements,
		"updates", stats.Updates,
		"effects", stats.EffectsRun,
		"cleanups", stats.Cleanups,
		"live", stats.LiveFibers,
		"duration", stats.Duration)
	for _, o := range e.observers {
		o.Committed(stats)
	}
}

// commitDeletion runs every effect cleanup in f's subtree, then removes
// its host nodes. A fiber without a host node removes each of its
// children instead.
func (e *Engine) commitDeletion(f *Fiber, stats *CommitStats) {
	e.walkSubtree(f, func(n *Fiber) {
		if n.owner != nil && n.owner.current == n.id {
			n.owner.current = ID{}
		}
		for _, hook := range n.effectHooks {
			if hook.cleanup != nil {
				hook.cleanup()
				stats.Cleanups++
			}
		}
	})
	e.removeHostNodes(f)
}

func (e *Engine) removeHostNodes(f *Fiber) {
	if f.Node != nil {
		e.host.RemoveChild(e.hostParent(f).Node, f.Node)
		return
	}
	for c := e.arena.get(f.child); c != nil; c = e.arena.get(c.sibling) {
		e.removeHostNodes(c)
	}
}

// hostParent returns the nearest ancestor of f that owns a host node.
func (e *Engine) hostParent(f *Fiber) *Fiber {
	p := e.arena.get(f.parent)
	for p != nil && p.Node == nil {
		p = e.arena.get(p.parent)
	}
	if p == nil {
		panic(errors.New("E006").WithDetailf("%s %s has no host ancestor", f.Name(), f.id))
	}
	return p
}

// commitWork applies placements and prop updates depth-first, starting at
// f and its siblings.
func (e *Engine) commitWork(f *Fiber, stats *CommitStats) {
	for ; f != nil; f = e.arena.get(f.sibling) {
		f.committed = true
		switch f.Tag {
		case TagUpdate:
			if f.Node != nil {
				if alt := e.arena.get(f.alternate); alt != nil {
					if e.updateProps(f.Node, f.Props, alt.Props) > 0 {
						stats.Updates++
					}
				}
			}
		case TagPlacement:
			if f.Node != nil {
				e.host.AppendChild(e.hostParent(f).Node, f.Node)
				stats.Placements++
			}
		}
		e.commitWork(e.arena.get(f.child), stats)
	}
}

// claimOwners points each component instance in root's subtree at its
// new fiber, before effects run, so setters called from effects and
// cleanups reach the committed slots.
func (e *Engine) claimOwners(root *Fiber) {
	e.walkSubtree(root, func(f *Fiber) {
		if f.owner != nil {
			f.owner.current = f.id
		}
	})
}

// commitEffects runs the cleanups of effects about to re-run, then the
// effects themselves, over root and its descendants.
func (e *Engine) commitEffects(root *Fiber, stats *CommitStats) {
	e.walkSubtree(root, func(f *Fiber) {
		alt := e.arena.get(f.alternate)
		if alt == nil {
			return
		}
		for i, hook := range f.effectHooks {
			if len(hook.deps) == 0 {
				continue
			}
			old := alt.effectHook(i)
			if old == nil || !depsChanged(old.deps, hook.deps) {
				continue
			}
			if old.cleanup != nil {
				old.cleanup()
				stats.Cleanups++
			}
		}
	})

	e.walkSubtree(root, func(f *Fiber) {
		alt := e.arena.get(f.alternate)
		for i, hook := range f.effectHooks {
			if alt == nil {
				hook.cleanup = hook.callback()
				stats.EffectsRun++
				continue
			}
			old := alt.effectHook(i)
			if len(hook.deps) > 0 && (old == nil || depsChanged(old.deps, hook.deps)) {
				hook.cleanup = hook.callback()
				stats.EffectsRun++
			} else if old != nil {
				hook.cleanup = old.cleanup
			}
		}
	})
}

func (f *Fiber) effectHook(i int) *effectHook {
	if i < len(f.effectHooks) {
		return f.effectHooks[i]
	}
	return nil
}

func depsChanged(prev, next []any) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if !element.Identical(prev[i], next[i]) {
			return true
		}
	}
	return false
}

// promote makes the finished WIP root current. A subtree root takes its
// source fiber's place in the parent's child chain.
func (e *Engine) promote(root *Fiber) {
	src := e.arena.get(root.alternate)
	if e.pass.kind == PassRoot || src == nil || src.id == e.current {
		e.current = root.id
	} else if parent := e.arena.get(src.parent); parent != nil {
		if parent.child == src.id {
			parent.child = root.id
		} else {
			for s := e.arena.get(parent.child); s != nil; s = e.arena.get(s.sibling) {
				if s.sibling == src.id {
					s.sibling = root.id
					break
				}
			}
		}
	}
	e.walkSubtree(root, func(f *Fiber) {
		f.alternate = ID{}
	})
}

// walkSubtree calls fn for root and each of its descendants in depth-first
// order. Siblings of root are not visited.
func (e *Engine) walkSubtree(root *Fiber, fn func(*Fiber)) {
	fn(root)
	for c := e.arena.get(root.child); c != nil; c = e.arena.get(c.sibling) {
		e.walkSubtree(c, fn)
	}
}
