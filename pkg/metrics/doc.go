// Package metrics exports engine activity as Prometheus metrics.
//
// An Observer is registered on an engine with fiber.WithObserver and counts
// passes, evaluated units, commits and effects. InstrumentHost wraps a host
// so every host mutation is counted by op.
//
// Metrics collected:
//   - mini_passes_total: passes started, by kind (root, subtree)
//   - mini_passes_abandoned_total: passes replaced or aborted before commit
//   - mini_units_total: fibers evaluated
//   - mini_commits_total: committed passes
//   - mini_effects_run_total: effect callbacks run
//   - mini_effect_cleanups_total: effect cleanups run
//   - mini_host_mutations_total: host calls, by op
//   - mini_commit_duration_seconds: commit phase duration
//   - mini_live_fibers: fibers alive after the last commit
//
// Example:
//
//	m := metrics.New(metrics.WithNamespace("myapp"))
//	root := mini.CreateRoot(metrics.InstrumentHost(m, h), container, sched,
//	    mini.WithObserver(m))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
package metrics
