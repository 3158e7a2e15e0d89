package provider

import (
	"context"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/observability"
)

// WithMetrics records operation count, duration and errors per provider.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)

	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(string(apperrors.FromError(err).Code), m.inner.Name())
	}
	m.metrics.RecordOperation(m.inner.Name(), "execute", status, time.Since(start))
	return output, err
}
