package fiber

import (
	"sort"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/host"
)

// updateProps brings node's properties and listeners from prev to next and
// returns the number of host calls made. Keys are visited in sorted order
// so the mutation sequence is stable.
func (e *Engine) updateProps(node host.Node, next, prev element.Props) int {
	calls := 0

	for _, key := range sortedKeys(prev) {
		if key == element.ChildrenKey {
			continue
		}
		if _, ok := next[key]; ok {
			continue
		}
		if event, ok := element.EventName(key); ok {
			if handler := prev[key]; handler != nil {
				e.host.RemoveEventListener(node, event, handler)
				e.logger.Debug("listener detached", "event", event)
				calls++
			}
			continue
		}
		e.host.RemoveProperty(node, key)
		calls++
	}

	for _, key := range sortedKeys(next) {
		if key == element.ChildrenKey {
			continue
		}
		value := next[key]
		old, had := prev[key]
		if had && element.Identical(value, old) {
			continue
		}
		if event, ok := element.EventName(key); ok {
			if had && old != nil {
				e.host.RemoveEventListener(node, event, old)
				calls++
			}
			if value != nil {
				e.host.AddEventListener(node, event, value)
				calls++
			}
			e.logger.Debug("listener attached", "event", event, "replaced", had && old != nil)
			continue
		}
		e.host.SetProperty(node, key, value)
		calls++
	}
	return calls
}

func sortedKeys(p element.Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
