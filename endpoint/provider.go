package endpoint

import (
	"context"

	"github.com/kbukum/restkit/provider"
	"github.com/kbukum/restkit/serializer"
)

// Typed adapts e into a provider whose results are decoded into T. Commands
// without a response type are given TypeOf[T].
func Typed[T any](e *Endpoint) provider.RequestResponse[*Command, T] {
	return provider.Adapt(
		provider.RequestResponse[*Command, any](e),
		e.Name(),
		func(_ context.Context, cmd *Command) (*Command, error) {
			if cmd != nil && cmd.ResponseType.IsZero() {
				typed := *cmd
				typed.ResponseType = serializer.TypeOf[T]()
				return &typed, nil
			}
			return cmd, nil
		},
		func(v any) (T, error) { return as[T](v, nil) },
	)
}
