// Package idle provides the idle-time scheduling primitive the engine runs
// on.
//
// A Scheduler invokes registered callbacks when the host has spare time,
// handing each a Deadline that reports how much of the idle period remains.
// The engine performs units of work while the remaining time stays above
// its yield threshold, then registers itself again.
//
// Two schedulers are provided. Manual runs callbacks only when Step is
// called, with a caller-chosen Deadline, which makes interruption points
// deterministic in tests:
//
//	sched := idle.NewManual()
//	eng.Start(sched)
//	sched.Step(idle.Countdown(3)) // at most three units of work
//
// Loop is a goroutine that fires idle callbacks once per frame and also
// runs submitted tasks (event handlers, renders) on the same goroutine, so
// everything touching the engine is serialized.
package idle
