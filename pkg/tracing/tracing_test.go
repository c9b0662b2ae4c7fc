package tracing

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
)

// recorder is a TracerProvider that keeps every started span.
type recorder struct {
	noop.TracerProvider
	mu    sync.Mutex
	spans []*span
}

func (r *recorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return &tracer{rec: r}
}

func (r *recorder) byName(name string) []*span {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*span
	for _, s := range r.spans {
		if s.name == name {
			out = append(out, s)
		}
	}
	return out
}

type tracer struct {
	noop.Tracer
	rec *recorder
}

func (t *tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &span{
		name:   name,
		parent: trace.SpanFromContext(ctx),
		attrs:  map[attribute.Key]attribute.Value{},
		start:  cfg.Timestamp(),
	}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	t.rec.mu.Lock()
	t.rec.spans = append(t.rec.spans, s)
	t.rec.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

type span struct {
	noop.Span
	name   string
	parent trace.Span
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	start  time.Time
	ended  bool
}

func (s *span) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *span) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *span) End(...trace.SpanEndOption) { s.ended = true }

func TestCommittedPassSpans(t *testing.T) {
	rec := &recorder{}
	obs := NewObserver(WithTracerProvider(rec), WithAttributes(attribute.String("session", "s1")))

	obs.PassStarted(fiber.PassRoot)
	obs.Committed(fiber.CommitStats{
		Kind:       fiber.PassRoot,
		Units:      4,
		Placements: 3,
		EffectsRun: 1,
		Duration:   2 * time.Millisecond,
	})

	passes := rec.byName(PassSpanName)
	commits := rec.byName(CommitSpanName)
	if len(passes) != 1 || len(commits) != 1 {
		t.Fatalf("spans: %d passes, %d commits; want 1 each", len(passes), len(commits))
	}
	pass, commit := passes[0], commits[0]

	if !pass.ended || !commit.ended {
		t.Error("spans not ended")
	}
	if pass.status != codes.Ok {
		t.Errorf("pass status = %v; want Ok", pass.status)
	}
	if commit.parent != trace.Span(pass) {
		t.Error("commit span is not a child of the pass span")
	}
	if got := pass.attrs["mini.pass.kind"].AsString(); got != "root" {
		t.Errorf("kind = %q", got)
	}
	if got := pass.attrs["session"].AsString(); got != "s1" {
		t.Errorf("session = %q", got)
	}
	if got := pass.attrs["mini.pass.units"].AsInt64(); got != 4 {
		t.Errorf("units = %d", got)
	}
	if got := commit.attrs["mini.commit.placements"].AsInt64(); got != 3 {
		t.Errorf("placements = %d", got)
	}
	if got := commit.attrs["mini.commit.effects"].AsInt64(); got != 1 {
		t.Errorf("effects = %d", got)
	}
	if commit.start.IsZero() {
		t.Error("commit span has no start timestamp")
	}
}

func TestAbandonedPassSpan(t *testing.T) {
	rec := &recorder{}
	obs := NewObserver(WithTracerProvider(rec))

	obs.PassStarted(fiber.PassSubtree)
	obs.PassAbandoned(fiber.PassSubtree)
	obs.PassStarted(fiber.PassSubtree)
	obs.Committed(fiber.CommitStats{Kind: fiber.PassSubtree})

	passes := rec.byName(PassSpanName)
	if len(passes) != 2 {
		t.Fatalf("pass spans = %d; want 2", len(passes))
	}
	if passes[0].status != codes.Error || !passes[0].attrs["mini.pass.abandoned"].AsBool() {
		t.Errorf("first pass status = %v attrs = %v", passes[0].status, passes[0].attrs)
	}
	if passes[1].status != codes.Ok {
		t.Errorf("second pass status = %v", passes[1].status)
	}
	if len(rec.byName(CommitSpanName)) != 1 {
		t.Error("want exactly one commit span")
	}
}

func TestEngineSpans(t *testing.T) {
	rec := &recorder{}
	mem := host.NewMemoryHost()
	container := mem.NewContainer()
	e := fiber.New(mem, fiber.WithObserver(NewObserver(WithTracerProvider(rec))))

	if err := e.Render(container, element.H("div", nil, "x")); err != nil {
		t.Fatal(err)
	}
	e.Flush()

	passes := rec.byName(PassSpanName)
	if len(passes) != 1 || !passes[0].ended {
		t.Fatalf("pass spans = %+v", passes)
	}
	if got := passes[0].attrs["mini.pass.units"].AsInt64(); got != 3 {
		t.Errorf("units = %d; want 3", got)
	}
}
