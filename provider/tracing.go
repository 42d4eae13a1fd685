package provider

import (
	"context"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/observability"
)

// WithTracing returns a Middleware that creates an OpenTelemetry span
// around each Execute call. The span name is "{serviceName}.{providerName}";
// input labels become span attributes.
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, serviceName: serviceName}
	}
}

type tracingRR[I, O any] struct {
	inner       RequestResponse[I, O]
	serviceName string
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.serviceName+"."+t.inner.Name())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.serviceName)
	observability.SetSpanAttribute(ctx, observability.AttrEndpoint, t.inner.Name())
	for k, v := range labelsOf(input) {
		observability.SetSpanAttribute(ctx, k, v)
	}

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		if re, ok := errors.AsRestError(err); ok {
			observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(re.Code))
			if re.StatusCode != 0 {
				observability.SetSpanAttribute(ctx, observability.AttrStatusCode, re.StatusCode)
			}
		}
		observability.SetSpanError(ctx, err)
	}

	return output, err
}
