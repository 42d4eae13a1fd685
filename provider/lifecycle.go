package provider

import "context"

// Closeable is optionally implemented by providers that hold resources
// requiring explicit cleanup, such as idle HTTP connections.
type Closeable interface {
	Close(ctx context.Context) error
}

// CloseAll closes every provider implementing Closeable and returns the
// first error.
func CloseAll[T Provider](ctx context.Context, providers ...T) error {
	var first error
	for _, p := range providers {
		if c, ok := any(p).(Closeable); ok {
			if err := c.Close(ctx); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
