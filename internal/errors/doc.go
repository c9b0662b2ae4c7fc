// Package errors provides structured, actionable error values for mini.
//
// Every error carries a stable code (e.g. "E002") that maps to a short
// message, a longer explanation and a documentation link. Engine misuse such
// as calling a hook outside a component or changing the hook order between
// renders is reported with these values, usually as a panic payload so that
// callers can recover it and inspect it with errors.As.
//
// # Error Categories
//
//   - runtime: hook misuse, rendering without a container, bad element types
//   - protocol: malformed mutation or event frames
//   - config: unreadable or invalid mini.json / mini.yaml
//   - storage: snapshot store failures
//
// # Usage
//
//	err := errors.New("E002").
//	    WithDetail("expected State at index 1, got Effect").
//	    WithSuggestion("Call hooks unconditionally at the top of the component")
//
//	fmt.Println(err.Format())
package errors
