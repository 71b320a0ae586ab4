package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/kiosk/pkg/domain"
)

func newTestMetrics() *Metrics {
	return NewMetrics(WithRegisterer(prometheus.NewPedanticRegistry()))
}

func TestMetrics_RecordsSessionEvents(t *testing.T) {
	m := newTestMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStarted(ctx, &domain.StepEvent{SessionID: "s1"})

	hooks.OnLineCommitted(ctx, &domain.LineEvent{
		SessionID: "s1",
		Line:      domain.Line{ID: 1, Kind: domain.LineSystem, Text: "Name?"},
		Elapsed:   280 * time.Millisecond,
	})
	hooks.OnLineCommitted(ctx, &domain.LineEvent{
		SessionID: "s1",
		Line:      domain.Line{ID: 2, Kind: domain.LineUser, Text: "Ada"},
	})

	hooks.OnStepAdvanced(ctx, &domain.StepEvent{SessionID: "s1", From: 0, To: 1})
	hooks.OnStepAdvanced(ctx, &domain.StepEvent{SessionID: "s1", From: 1, To: 2})

	hooks.OnRefused(ctx, &domain.RefusalEvent{SessionID: "s1", Op: "submit", Err: domain.ErrEmptyAnswer})
	hooks.OnLaunched(ctx, &domain.LaunchEvent{SessionID: "s1", Answers: []string{"Ada"}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linesCommitted.WithLabelValues("system")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linesCommitted.WithLabelValues("user")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stepsAdvanced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refusals.WithLabelValues("submit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.launches))

	// Only system lines carry a typing duration.
	count := testutil.CollectAndCount(m.promptTyping)
	assert.Equal(t, 1, count)
}

func TestMetrics_WrapForwards(t *testing.T) {
	m := newTestMetrics()

	var forwarded []string
	hooks := m.Wrap(domain.Hooks{
		OnStarted: func(ctx context.Context, e *domain.StepEvent) {
			forwarded = append(forwarded, "started")
		},
		OnLaunched: func(ctx context.Context, e *domain.LaunchEvent) {
			forwarded = append(forwarded, "launched")
		},
	})

	ctx := context.Background()
	hooks.OnStarted(ctx, &domain.StepEvent{})
	hooks.OnLaunched(ctx, &domain.LaunchEvent{})
	// Hooks without a next stay safe to call.
	hooks.OnRefused(ctx, &domain.RefusalEvent{Op: "launch"})

	assert.Equal(t, []string{"started", "launched"}, forwarded)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted), "metrics still recorded while forwarding")
}
