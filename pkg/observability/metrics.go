package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/kiosk/pkg/domain"
)

// Metrics holds the Prometheus collectors for kiosk sessions.
type Metrics struct {
	sessionsStarted prometheus.Counter
	linesCommitted  *prometheus.CounterVec
	stepsAdvanced   prometheus.Counter
	launches        prometheus.Counter
	refusals        *prometheus.CounterVec
	promptTyping    prometheus.Histogram
}

// Option configures the Metrics bundle.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	namespace  string
}

// WithRegisterer registers the collectors somewhere other than the default
// registry. Tests use this to stay isolated.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// WithNamespace prefixes all metric names. Defaults to "kiosk".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// NewMetrics creates and registers the kiosk collectors.
func NewMetrics(opts ...Option) *Metrics {
	o := &options{
		registerer: prometheus.DefaultRegisterer,
		namespace:  "kiosk",
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Metrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of interview sessions started",
		}),
		linesCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "lines_committed_total",
			Help:      "Total transcript lines committed, by kind",
		}, []string{"kind"}),
		stepsAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "steps_advanced_total",
			Help:      "Total step advances across all sessions",
		}),
		launches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "launches_total",
			Help:      "Total launch gate firings",
		}),
		refusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "refusals_total",
			Help:      "Total refused operations, by operation",
		}, []string{"op"}),
		promptTyping: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "prompt_typing_seconds",
			Help:      "Time from prompt start to its commit as a system line",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	o.registerer.MustRegister(
		m.sessionsStarted,
		m.linesCommitted,
		m.stepsAdvanced,
		m.launches,
		m.refusals,
		m.promptTyping,
	)

	return m
}

// Hooks returns session hooks that record into the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return m.Wrap(domain.Hooks{})
}

// Wrap returns hooks that record into the collectors and then forward each
// event to next. This lets a host keep its own hooks while being measured.
func (m *Metrics) Wrap(next domain.Hooks) domain.Hooks {
	return domain.Hooks{
		OnStarted: func(ctx context.Context, e *domain.StepEvent) {
			m.sessionsStarted.Inc()
			if next.OnStarted != nil {
				next.OnStarted(ctx, e)
			}
		},
		OnLineCommitted: func(ctx context.Context, e *domain.LineEvent) {
			m.linesCommitted.WithLabelValues(string(e.Line.Kind)).Inc()
			if e.Line.Kind == domain.LineSystem && e.Elapsed > 0 {
				m.promptTyping.Observe(e.Elapsed.Seconds())
			}
			if next.OnLineCommitted != nil {
				next.OnLineCommitted(ctx, e)
			}
		},
		OnStepAdvanced: func(ctx context.Context, e *domain.StepEvent) {
			m.stepsAdvanced.Inc()
			if next.OnStepAdvanced != nil {
				next.OnStepAdvanced(ctx, e)
			}
		},
		OnLaunched: func(ctx context.Context, e *domain.LaunchEvent) {
			m.launches.Inc()
			if next.OnLaunched != nil {
				next.OnLaunched(ctx, e)
			}
		},
		OnRefused: func(ctx context.Context, e *domain.RefusalEvent) {
			m.refusals.WithLabelValues(e.Op).Inc()
			if next.OnRefused != nil {
				next.OnRefused(ctx, e)
			}
		},
	}
}
