// Package errors defines the error taxonomy of the REST client.
//
// Every failure surfaced by the client is a *RestError tagged with an
// ErrorCode. HTTP-level failures additionally carry the status code, the
// status message and the raw response body. Use the Is* helpers, which
// unwrap with errors.As, to branch on the kind of failure.
package errors
