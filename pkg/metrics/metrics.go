package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
)

// Config configures the Prometheus collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "mini").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	// Default: 100µs to ~400ms, exponential.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the commit duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "mini",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 13),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer records engine activity. It implements fiber.Observer and may
// be shared by any number of engines.
type Observer struct {
	passes         *prometheus.CounterVec
	abandoned      prometheus.Counter
	units          prometheus.Counter
	commits        prometheus.Counter
	effectsRun     prometheus.Counter
	cleanups       prometheus.Counter
	mutations      *prometheus.CounterVec
	commitDuration prometheus.Histogram
	liveFibers     prometheus.Gauge
}

var _ fiber.Observer = (*Observer)(nil)

// New creates and registers the collectors. It panics if they are already
// registered with the configured registry, like promauto.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Observer{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of render passes started",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		abandoned:  counter("passes_abandoned_total", "Total number of passes dropped before commit"),
		units:      counter("units_total", "Total number of fibers evaluated"),
		commits:    counter("commits_total", "Total number of committed passes"),
		effectsRun: counter("effects_run_total", "Total number of effect callbacks run"),
		cleanups:   counter("effect_cleanups_total", "Total number of effect cleanups run"),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_mutations_total",
			Help:        "Total number of host mutations by op",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		liveFibers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_fibers",
			Help:        "Number of fibers alive after the last commit",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// PassStarted implements fiber.Observer.
func (o *Observer) PassStarted(kind fiber.PassKind) {
	o.passes.WithLabelValues(kind.String()).Inc()
}

// PassAbandoned implements fiber.Observer.
func (o *Observer) PassAbandoned(fiber.PassKind) {
	o.abandoned.Inc()
}

// Committed implements fiber.Observer.
func (o *Observer) Committed(stats fiber.CommitStats) {
	o.commits.Inc()
	o.units.Add(float64(stats.Units))
	o.effectsRun.Add(float64(stats.EffectsRun))
	o.cleanups.Add(float64(stats.Cleanups))
	o.commitDuration.Observe(stats.Duration.Seconds())
	o.liveFibers.Set(float64(stats.LiveFibers))
}

// RecordMutation counts one host mutation.
func (o *Observer) RecordMutation(op host.MutationOp) {
	o.mutations.WithLabelValues(op.String()).Inc()
}

// InstrumentHost returns h wrapped so that every mutation is counted.
func InstrumentHost(o *Observer, h host.Host) host.Host {
	return host.Observe(h, func(m host.Mutation) {
		o.RecordMutation(m.Op)
	})
}
