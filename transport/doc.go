// Package transport sends HTTP requests on behalf of an endpoint.
//
// Transport is the capability the endpoint depends on: it takes a fully
// built Request and returns a Response whose body the caller reads once and
// releases with Close. HTTP is the net/http implementation; it applies
// default headers, authentication and interceptors, and optionally guards
// calls with a circuit breaker, a rate limiter and a bulkhead.
//
//	tr, err := transport.New(transport.Config{
//	    Timeout: 10 * time.Second,
//	    Auth:    transport.BearerAuth(token),
//	}, transport.WithInterceptors(transport.RequestID()))
package transport
