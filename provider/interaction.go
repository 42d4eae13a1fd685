package provider

import "context"

// RequestResponse represents a provider that takes one input and returns one output.
// An endpoint executing commands is the canonical example.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Labeled is optionally implemented by inputs that describe themselves to
// the logging, tracing and metrics middleware, e.g. {"method": "GET"}.
type Labeled interface {
	Labels() map[string]string
}

func labelsOf(input any) map[string]string {
	if l, ok := input.(Labeled); ok {
		return l.Labels()
	}
	return nil
}
