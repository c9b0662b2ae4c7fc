package fiber

import (
	"fmt"

	"github.com/vango-dev/mini/internal/errors"
)

// HookKind identifies the type of hook call for order validation.
type HookKind uint8

const (
	HookState HookKind = iota + 1
	HookEffect
)

// String returns the string representation of the HookKind.
func (k HookKind) String() string {
	switch k {
	case HookState:
		return "UseState"
	case HookEffect:
		return "UseEffect"
	default:
		return fmt.Sprintf("HookKind(%d)", uint8(k))
	}
}

// track records a hook call and, in debug mode, checks it against the
// previous render of the same fiber.
func (rc *renderContext) track(kind HookKind) {
	i := len(rc.kinds)
	rc.kinds = append(rc.kinds, kind)
	if !rc.engine.debugHooks || rc.alt == nil {
		return
	}
	if i >= len(rc.alt.hookKinds) {
		panic(errors.New("E002").WithDetailf("%s: extra %s hook at index %d",
			rc.fiber.Name(), kind, i))
	}
	if expected := rc.alt.hookKinds[i]; expected != kind {
		panic(errors.New("E002").WithDetailf("%s: hook %d changed from %s to %s",
			rc.fiber.Name(), i, expected, kind))
	}
}
