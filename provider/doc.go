// Package provider defines the RequestResponse abstraction the REST
// endpoint implements and the middleware that composes around it.
//
// Middleware[I, O] wraps a RequestResponse provider. Use Chain to compose:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[*endpoint.Command, any](log),
//	    provider.WithMetrics[*endpoint.Command, any](metrics),
//	    provider.WithTracing[*endpoint.Command, any]("billing"),
//	)(ep)
//
// WithResilience adds rate limiting, a bulkhead, a circuit breaker and
// retry of transient failures:
//
//	resilient := provider.WithResilience(wrapped, provider.ResilienceConfig{
//	    Retry: &resilience.RetryConfig{MaxAttempts: 3},
//	})
//
// Adapt maps inputs and outputs, and Balancer spreads calls over several
// interchangeable providers with optional failover:
//
//	users := provider.NewBalancer("users", nil, primary, secondary).WithFailover()
//
// Inputs implementing Labeled describe themselves to the logging, tracing
// and metrics middleware.
package provider
