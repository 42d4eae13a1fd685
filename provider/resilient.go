package provider

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/resilience"
)

// ResilienceConfig bundles optional resilience policies for a provider.
// Nil fields are skipped; zero config means pure passthrough.
type ResilienceConfig struct {
	// CircuitBreaker stops calls after repeated transient failures.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	// Retry repeats transient failures with exponential backoff.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	// RateLimiter limits the rate of calls using a token bucket.
	RateLimiter *resilience.RateLimiterConfig `yaml:"rate_limiter" mapstructure:"rate_limiter"`
	// Bulkhead limits concurrent calls.
	Bulkhead *resilience.BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Retry == nil && c.RateLimiter == nil && c.Bulkhead == nil
}

// ResilienceState holds initialized resilience primitives built from config.
type ResilienceState struct {
	cb       *resilience.CircuitBreaker
	rl       *resilience.RateLimiter
	bh       *resilience.Bulkhead
	retryCfg *resilience.RetryConfig
}

// BuildResilience creates initialized resilience primitives from config.
func BuildResilience(cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{retryCfg: cfg.Retry}
	if cfg.CircuitBreaker != nil {
		s.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	if cfg.RateLimiter != nil {
		s.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	if cfg.Bulkhead != nil {
		s.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return s
}

// WithResilience wraps a RequestResponse provider with resilience policies.
// Execution chain: RateLimiter → Bulkhead → CircuitBreaker → Retry → Execute.
// An empty config returns the provider unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, state: BuildResilience(cfg)}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable is false while the circuit is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if r.state.cb != nil && r.state.cb.State() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn through the resilience chain:
// RateLimiter.Wait → Bulkhead → CircuitBreaker → Retry → fn.
// Refusals by a policy are returned as SERVICE_UNAVAILABLE or TIMEOUT;
// errors from fn are returned unchanged.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			var zero T
			return zero, wrapResilienceError(err)
		}
	}

	call := fn
	if s.retryCfg != nil {
		retryCfg := *s.retryCfg
		call = func() (T, error) {
			return resilience.Retry(ctx, retryCfg, fn)
		}
	}

	if s.cb != nil {
		cbCall := call
		call = func() (T, error) {
			var result T
			var resultErr error
			cbErr := s.cb.Execute(func() error {
				result, resultErr = cbCall()
				return resultErr
			})
			if cbErr != nil && resultErr == nil {
				return result, wrapResilienceError(cbErr)
			}
			return result, resultErr
		}
	}

	if s.bh != nil {
		var result T
		var resultErr error
		bhErr := s.bh.Execute(ctx, func() error {
			result, resultErr = call()
			return resultErr
		})
		if bhErr != nil && resultErr == nil {
			return result, wrapResilienceError(bhErr)
		}
		return result, resultErr
	}

	return call()
}

// wrapResilienceError converts resilience sentinels and context errors into
// RestErrors.
func wrapResilienceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsRestError(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return errors.ServiceUnavailable("circuit breaker is open", err)
	case stderrors.Is(err, resilience.ErrRateLimited):
		return errors.ServiceUnavailable("rate limit exceeded", err)
	case stderrors.Is(err, resilience.ErrBulkheadFull):
		return errors.ServiceUnavailable("concurrency limit reached", err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout(err)
	default:
		return err
	}
}
