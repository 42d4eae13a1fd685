package provider

import "slices"

// Middleware wraps a provider with cross-cutting behavior: logging, tracing,
// metrics or resilience.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares. The first one listed sees a call first and its
// result last, so Chain(a, b)(p) behaves as a(b(p)). Nil entries are skipped,
// which lets optional layers be listed unconditionally.
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(p RequestResponse[I, O]) RequestResponse[I, O] {
		for _, mw := range slices.Backward(middlewares) {
			if mw != nil {
				p = mw(p)
			}
		}
		return p
	}
}

// Apply wraps p with middlewares, outermost first.
func Apply[I, O any](p RequestResponse[I, O], middlewares ...Middleware[I, O]) RequestResponse[I, O] {
	return Chain(middlewares...)(p)
}

// Resilient is WithResilience as a middleware. An empty config yields a nil
// middleware, which Chain skips.
func Resilient[I, O any](cfg ResilienceConfig) Middleware[I, O] {
	if cfg.IsEmpty() {
		return nil
	}
	return func(p RequestResponse[I, O]) RequestResponse[I, O] {
		return WithResilience(p, cfg)
	}
}
