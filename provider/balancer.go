package provider

import (
	"context"
	"slices"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/resilience"
)

// Balancer spreads calls over interchangeable providers chosen by a
// Selector. With failover enabled, a transient failure moves the call to
// the next candidate; permanent failures are returned at once.
type Balancer[I, O any] struct {
	name      string
	providers []RequestResponse[I, O]
	selector  Selector[RequestResponse[I, O]]
	failover  bool
	log       *logger.Logger
}

var _ RequestResponse[any, any] = (*Balancer[any, any])(nil)

// NewBalancer creates a balancer over providers. A nil selector means
// priority order.
func NewBalancer[I, O any](name string, selector Selector[RequestResponse[I, O]], providers ...RequestResponse[I, O]) *Balancer[I, O] {
	if selector == nil {
		selector = &PrioritySelector[RequestResponse[I, O]]{}
	}
	return &Balancer[I, O]{
		name:      name,
		providers: slices.Clone(providers),
		selector:  selector,
		log:       logger.Get("provider").WithComponent(name),
	}
}

// WithFailover enables retrying transient failures on the remaining providers.
func (b *Balancer[I, O]) WithFailover() *Balancer[I, O] {
	b.failover = true
	return b
}

// Name returns the balancer name.
func (b *Balancer[I, O]) Name() string { return b.name }

// IsAvailable reports whether any provider is available.
func (b *Balancer[I, O]) IsAvailable(ctx context.Context) bool {
	for _, p := range b.providers {
		if p.IsAvailable(ctx) {
			return true
		}
	}
	return false
}

// Execute runs input on the selected provider. When every candidate failed
// transiently the last failure is returned.
func (b *Balancer[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var zero O
	candidates := slices.Clone(b.providers)
	var lastErr error

	for len(candidates) > 0 {
		idx, err := b.selector.Select(ctx, candidates)
		if err != nil {
			break
		}
		p := candidates[idx]
		out, err := p.Execute(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !b.failover || !resilience.IsTransient(err) || ctx.Err() != nil {
			return zero, err
		}
		candidates = slices.Delete(candidates, idx, idx+1)
		if len(candidates) > 0 {
			b.log.Warn("provider failed, trying next", logger.Fields(
				"provider", p.Name(),
				logger.FieldError, err.Error(),
				"remaining", len(candidates),
			))
		}
	}

	if lastErr != nil {
		return zero, lastErr
	}
	return zero, errors.ServiceUnavailable("no available provider for "+b.name, nil)
}
