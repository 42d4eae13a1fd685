// Package resilience provides the guards that wrap REST calls: retry with
// exponential backoff, a circuit breaker, a token-bucket rate limiter and a
// bulkhead bounding in-flight requests.
//
// By default only failures classified as retryable by the errors package
// are retried or counted against the circuit, so 4xx responses neither
// trip the breaker nor get repeated.
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("users"))
//	user, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (*User, error) {
//	    var u *User
//	    err := cb.Execute(func() error {
//	        var err error
//	        u, err = endpoint.Get[*User](ctx, ep, "/users/1")
//	        return err
//	    })
//	    return u, err
//	})
package resilience
