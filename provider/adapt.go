package provider

import "context"

// Adapt exposes inner, which works on [BI, BO], as a provider of [I, O].
// in converts each input before the call and out converts the result of a
// successful one; an error from either ends the call. An empty name keeps
// the name of inner.
func Adapt[I, O, BI, BO any](
	inner RequestResponse[BI, BO],
	name string,
	in func(ctx context.Context, input I) (BI, error),
	out func(output BO) (O, error),
) RequestResponse[I, O] {
	return &adapter[I, O, BI, BO]{inner: inner, name: name, in: in, out: out}
}

type adapter[I, O, BI, BO any] struct {
	inner RequestResponse[BI, BO]
	name  string
	in    func(context.Context, I) (BI, error)
	out   func(BO) (O, error)
}

func (a *adapter[I, O, BI, BO]) Name() string {
	if a.name == "" {
		return a.inner.Name()
	}
	return a.name
}

func (a *adapter[I, O, BI, BO]) IsAvailable(ctx context.Context) bool {
	return a.inner.IsAvailable(ctx)
}

// Close forwards to inner when it holds resources.
func (a *adapter[I, O, BI, BO]) Close(ctx context.Context) error {
	if c, ok := a.inner.(Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}

func (a *adapter[I, O, BI, BO]) Execute(ctx context.Context, input I) (O, error) {
	var result O
	req, err := a.in(ctx, input)
	if err != nil {
		return result, err
	}
	resp, err := a.inner.Execute(ctx, req)
	if err != nil {
		return result, err
	}
	return a.out(resp)
}
