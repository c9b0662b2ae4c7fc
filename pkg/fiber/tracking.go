package fiber

import (
	"runtime"
	"sync"

	"github.com/vango-dev/mini/internal/errors"
)

// renderContext is the hook bookkeeping for the component being evaluated
// on a goroutine.
type renderContext struct {
	engine     *Engine
	fiber      *Fiber
	alt        *Fiber // fiber reconciled against, nil on mount
	stateIndex int
	effects    []*effectHook
	kinds      []HookKind

	gid  uint64
	prev *renderContext
}

// renderContexts stores the active renderContext per goroutine.
var renderContexts sync.Map

// goroutineID returns the current goroutine's ID, parsed from the
// "goroutine <id> " header of runtime.Stack.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// beginRender makes f the component being evaluated on this goroutine.
func (e *Engine) beginRender(f *Fiber) *renderContext {
	rc := &renderContext{
		engine: e,
		fiber:  f,
		alt:    e.arena.get(f.alternate),
		gid:    goroutineID(),
	}
	if prev, ok := renderContexts.Load(rc.gid); ok {
		rc.prev = prev.(*renderContext)
	}
	renderContexts.Store(rc.gid, rc)
	f.stateHooks = nil
	if rc.alt != nil && rc.alt.owner != nil {
		f.owner = rc.alt.owner
	} else if f.owner == nil {
		f.owner = &hookOwner{}
	}
	return rc
}

// endRender restores whatever was being evaluated before rc.
func endRender(rc *renderContext) {
	if rc.prev != nil {
		renderContexts.Store(rc.gid, rc.prev)
	} else {
		renderContexts.Delete(rc.gid)
	}
}

// finish stores the hooks collected during evaluation on the fiber.
func (rc *renderContext) finish() {
	f := rc.fiber
	f.effectHooks = rc.effects
	f.hookKinds = rc.kinds
	if rc.engine.debugHooks && rc.alt != nil && len(rc.kinds) < len(rc.alt.hookKinds) {
		panic(errors.New("E002").WithDetailf(
			"%s rendered %d hooks, previous render had %d",
			f.Name(), len(rc.kinds), len(rc.alt.hookKinds)))
	}
}

// currentRender returns the active renderContext, panicking with E001 when
// no component is being evaluated.
func currentRender(hook string) *renderContext {
	if v, ok := renderContexts.Load(goroutineID()); ok {
		return v.(*renderContext)
	}
	panic(errors.New("E001").WithDetailf("%s called outside component render", hook))
}
