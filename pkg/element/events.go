package element

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// eventPrefix marks a prop as an event handler.
const eventPrefix = "on"

// EventName returns the event a handler prop attaches to.
// "onClick" and "onclick" both map to "click". Keys that are exactly "on"
// or do not start with the prefix are not handlers.
func EventName(key string) (string, bool) {
	if len(key) <= len(eventPrefix) || !strings.HasPrefix(key, eventPrefix) {
		return "", false
	}
	return strings.ToLower(key[len(eventPrefix):]), true
}

// IsEventProp reports whether key follows the handler naming convention.
func IsEventProp(key string) bool {
	_, ok := EventName(key)
	return ok
}

// EventProp returns the handler prop key for an event name ("click" → "onClick").
func EventProp(event string) string {
	if event == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(event)
	return eventPrefix + string(unicode.ToUpper(r)) + event[size:]
}

// Mouse and form events used by the demo components and tests.

// OnClick returns the prop key for click handlers.
func OnClick() string { return EventProp("click") }

// OnInput returns the prop key for input handlers.
func OnInput() string { return EventProp("input") }

// OnChange returns the prop key for change handlers.
func OnChange() string { return EventProp("change") }

// OnSubmit returns the prop key for submit handlers.
func OnSubmit() string { return EventProp("submit") }
