// Package fiber is the reconciliation engine: fiber tree, time-sliced work
// loop, positional reconciler, two-phase committer and hooks runtime.
//
// # Passes
//
// A pass builds a work-in-progress (WIP) tree and then commits it. Root
// passes start from Engine.Render and cover the whole tree. Subtree passes
// start when a component's state changes; they re-evaluate only that
// component and its descendants, starting from a shallow clone of the
// component's fiber.
//
// The work loop performs one fiber (a unit of work) at a time and checks
// the idle deadline before each unit. When the deadline runs low it returns
// and resumes from the same fiber on the next idle callback. Nothing is
// visible on the host until every unit has run, at which point the commit
// applies deletions, placements and prop updates, runs effects, and makes
// the finished tree current.
//
// # Hooks
//
// UseState, UseEffect and UseRerender may only be called while a function
// component is being evaluated. Hook slots are matched by call order, so a
// component must call the same hooks in the same order on every render.
// WithDebugHooks(true) verifies that and panics with E002 on a mismatch.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Everything that touches it,
// including state setters, must run on one goroutine; idle.Loop provides
// such a goroutine.
package fiber
