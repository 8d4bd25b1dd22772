package provider

import (
	"context"
	"time"

	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/observability"
)

// WithMetrics returns a Middleware that records each Execute call as an
// operation named after the provider. Failures are also counted by error
// code. A nil metrics value disables recording.
func WithMetrics[I, O any](service string, metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if metrics == nil {
			return inner
		}
		return &metricsRR[I, O]{inner: inner, service: service, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	service string
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, string(errors.Wrap(err).Code), m.inner.Name())
	}
	m.metrics.RecordOperation(ctx, m.service, m.inner.Name(), status, duration)

	return output, err
}
