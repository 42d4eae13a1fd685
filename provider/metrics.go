package provider

import (
	"context"
	"time"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/observability"
)

// WithMetrics returns a Middleware that records call count, duration,
// in-flight calls and errors by code. The "method" input label, when
// present, is recorded with each call.
func WithMetrics[I, O any](metrics *observability.ClientMetrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.ClientMetrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	name := m.inner.Name()
	method := labelsOf(input)["method"]

	m.metrics.RecordStart(ctx, name)
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)
	duration := time.Since(start)

	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeError
		code := string(errors.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		m.metrics.RecordError(ctx, name, code)
	}
	m.metrics.RecordEnd(ctx, name, method, outcome, duration)

	return output, err
}
