package provider

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"
)

type rawCall struct{ path string }

type backend struct {
	available bool
	calls     int
	err       error
}

func (b *backend) Name() string                       { return "backend" }
func (b *backend) IsAvailable(_ context.Context) bool { return b.available }
func (b *backend) Execute(_ context.Context, in rawCall) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return len(in.path), nil
}

func adaptToInt(inner RequestResponse[rawCall, any]) RequestResponse[int, string] {
	return Adapt(inner, "typed",
		func(_ context.Context, id int) (rawCall, error) {
			if id < 0 {
				return rawCall{}, stderrors.New("negative id")
			}
			return rawCall{path: "/items/" + strconv.Itoa(id)}, nil
		},
		func(v any) (string, error) {
			n, ok := v.(int)
			if !ok {
				return "", stderrors.New("unexpected output")
			}
			return strconv.Itoa(n), nil
		},
	)
}

func TestAdapt(t *testing.T) {
	tests := []struct {
		name      string
		input     int
		err       error
		want      string
		wantErr   bool
		wantCalls int
	}{
		{"maps both ways", 42, nil, "9", false, 1},
		{"input mapping fails", -1, nil, "", true, 0},
		{"backend fails", 1, stderrors.New("boom"), "", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &backend{available: true, err: tt.err}
			got, err := adaptToInt(b).Execute(context.Background(), tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || b.calls != tt.wantCalls {
				t.Errorf("got %q after %d calls", got, b.calls)
			}
		})
	}
}

func TestAdapt_DelegatesAvailability(t *testing.T) {
	b := &backend{available: false}
	adapted := adaptToInt(b)
	if adapted.IsAvailable(context.Background()) || adapted.Name() != "typed" {
		t.Error("expected availability from the backend and the adapted name")
	}
}

func TestAdapt_ComposesWithResilience(t *testing.T) {
	b := &backend{available: true}
	adapted := adaptToInt(WithResilience[rawCall, any](b, ResilienceConfig{}))
	if got, err := adapted.Execute(context.Background(), 7); err != nil || got != "8" {
		t.Fatalf("unexpected result %q %v", got, err)
	}
}

type closingBackend struct {
	backend
	closed bool
}

func (c *closingBackend) Close(context.Context) error {
	c.closed = true
	return nil
}

func TestAdapt_NameAndClose(t *testing.T) {
	b := &closingBackend{backend: backend{available: true}}
	adapted := Adapt(RequestResponse[rawCall, any](b), "",
		func(_ context.Context, path string) (rawCall, error) { return rawCall{path: path}, nil },
		func(v any) (any, error) { return v, nil },
	)
	if adapted.Name() != "backend" {
		t.Errorf("expected the inner name, got %q", adapted.Name())
	}
	c, ok := adapted.(Closeable)
	if !ok {
		t.Fatal("expected the adapter to be closeable")
	}
	if err := c.Close(context.Background()); err != nil || !b.closed {
		t.Errorf("expected Close to reach the backend, err %v", err)
	}
	if err := adaptToInt(&backend{}).(Closeable).Close(context.Background()); err != nil {
		t.Errorf("expected a no-op close, got %v", err)
	}
}
