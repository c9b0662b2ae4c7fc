// Package host defines the renderer capability the engine mutates and
// provides an in-memory implementation.
//
// The engine never touches a concrete UI toolkit. It creates nodes, sets and
// removes properties, attaches and detaches event listeners, and appends or
// removes children through the Host interface. Backends implement Host for
// their own node type: MemoryHost keeps a plain tree for tests and the CLI,
// and the server package streams the same calls to a browser.
//
// Observe wraps a Host and reports every call as a Mutation, which is how
// metrics count host work and how tests assert that a re-render was free:
//
//	rec := host.NewRecorder(host.NewMemoryHost())
//	// ... render twice ...
//	if n := len(rec.Mutations()); n != 0 {
//	    t.Errorf("re-render produced %d mutations", n)
//	}
package host
