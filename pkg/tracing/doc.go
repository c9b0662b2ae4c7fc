// Package tracing reports engine passes as OpenTelemetry spans.
//
// Each pass gets a "mini.pass" span that starts when the pass is scheduled
// and ends when it commits or is abandoned. A committed pass gets a child
// "mini.commit" span covering the commit phase, with the commit summary as
// attributes.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// given with WithTracerProvider. Configure it in main() before creating
// engines:
//
//	otel.SetTracerProvider(tp)
//	root := mini.CreateRoot(h, container, sched,
//	    mini.WithObserver(tracing.NewObserver()))
package tracing
