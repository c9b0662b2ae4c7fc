package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/mini/pkg/fiber"
)

// Default tracer name.
const defaultTracerName = "mini"

// Span names.
const (
	PassSpanName   = "mini.pass"
	CommitSpanName = "mini.commit"
)

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer (default: "mini").
	TracerName string

	// Provider supplies the tracer (default: the global provider).
	Provider trace.TracerProvider

	// Attributes are added to every pass span, e.g. a session id.
	Attributes []attribute.KeyValue
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// WithAttributes adds attributes to every pass span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Observer turns pass notifications into spans. It implements
// fiber.Observer. Use one Observer per engine: it tracks the engine's
// single pass in flight.
type Observer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	parent context.Context

	ctx  context.Context
	span trace.Span
}

var _ fiber.Observer = (*Observer)(nil)

// NewObserver creates a tracing observer.
func NewObserver(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.Provider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{
		tracer: tp.Tracer(config.TracerName),
		attrs:  config.Attributes,
		parent: context.Background(),
	}
}

// WithParent makes pass spans children of the span in ctx, e.g. the span of
// the websocket connection the engine serves.
func (o *Observer) WithParent(ctx context.Context) *Observer {
	o.parent = ctx
	return o
}

// PassStarted implements fiber.Observer.
func (o *Observer) PassStarted(kind fiber.PassKind) {
	o.end(codes.Unset, "")
	attrs := append([]attribute.KeyValue{attribute.String("mini.pass.kind", kind.String())}, o.attrs...)
	o.ctx, o.span = o.tracer.Start(o.parent, PassSpanName, trace.WithAttributes(attrs...))
}

// PassAbandoned implements fiber.Observer.
func (o *Observer) PassAbandoned(fiber.PassKind) {
	if o.span == nil {
		return
	}
	o.span.SetAttributes(attribute.Bool("mini.pass.abandoned", true))
	o.end(codes.Error, "pass abandoned")
}

// Committed implements fiber.Observer.
func (o *Observer) Committed(stats fiber.CommitStats) {
	ctx := o.ctx
	if ctx == nil {
		ctx = o.parent
	}
	end := time.Now()
	_, span := o.tracer.Start(ctx, CommitSpanName,
		trace.WithTimestamp(end.Add(-stats.Duration)),
		trace.WithAttributes(
			attribute.Int("mini.commit.deletions", stats.Deletions),
			attribute.Int("mini.commit.placements", stats.Placements),
			attribute.Int("mini.commit.updates", stats.Updates),
			attribute.Int("mini.commit.effects", stats.EffectsRun),
			attribute.Int("mini.commit.cleanups", stats.Cleanups),
		),
	)
	span.End(trace.WithTimestamp(end))

	if o.span != nil {
		o.span.SetAttributes(
			attribute.Int("mini.pass.units", stats.Units),
			attribute.Int("mini.pass.live_fibers", stats.LiveFibers),
		)
	}
	o.end(codes.Ok, "")
}

func (o *Observer) end(code codes.Code, desc string) {
	if o.span == nil {
		return
	}
	if code != codes.Unset {
		o.span.SetStatus(code, desc)
	}
	o.span.End()
	o.ctx, o.span = nil, nil
}
