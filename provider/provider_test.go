package provider_test

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/provider"
)

// call is a labeled test input.
type call struct {
	method string
	path   string
}

func (c call) Labels() map[string]string {
	return map[string]string{"method": c.method, "path": c.path}
}

// stubProvider answers every call with reply or fails with err.
type stubProvider struct {
	name      string
	available bool
	reply     string
	err       error
	calls     atomic.Int32
	closed    bool
	closeErr  error
}

func newStub(name string) *stubProvider {
	return &stubProvider{name: name, available: true, reply: name}
}

func (p *stubProvider) Name() string                       { return p.name }
func (p *stubProvider) IsAvailable(_ context.Context) bool { return p.available }
func (p *stubProvider) Execute(_ context.Context, in call) (string, error) {
	p.calls.Add(1)
	if p.err != nil {
		return "", p.err
	}
	return p.reply + ":" + in.path, nil
}
func (p *stubProvider) Close(_ context.Context) error {
	p.closed = true
	return p.closeErr
}

var _ provider.RequestResponse[call, string] = (*stubProvider)(nil)
var _ provider.Closeable = (*stubProvider)(nil)

func TestRegistry(t *testing.T) {
	reg := provider.NewRegistry[*stubProvider]()
	b, a := newStub("b"), newStub("a")
	if err := reg.Register("b", b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register("a", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register("a", newStub("a2")); err == nil {
		t.Error("expected an error for a duplicate name")
	}

	if got, ok := reg.Get("a"); !ok || got != a {
		t.Errorf("expected provider a, got %v", got)
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("expected missing provider")
	}
	if names := reg.List(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected sorted names, got %v", names)
	}
	if all := reg.All(); len(all) != 2 || all[0] != a {
		t.Errorf("expected providers ordered by name, got %v", all)
	}

	b.closeErr = stderrors.New("close failed")
	if err := reg.Close(context.Background()); err == nil {
		t.Error("expected the close error")
	}
	if !a.closed || !b.closed {
		t.Error("expected every provider closed")
	}
}

func TestPrioritySelector(t *testing.T) {
	a, b := newStub("a"), newStub("b")
	s := &provider.PrioritySelector[*stubProvider]{}
	ctx := context.Background()

	if idx, err := s.Select(ctx, []*stubProvider{a, b}); err != nil || idx != 0 {
		t.Errorf("expected 0, got %d %v", idx, err)
	}
	a.available = false
	if idx, err := s.Select(ctx, []*stubProvider{a, b}); err != nil || idx != 1 {
		t.Errorf("expected 1, got %d %v", idx, err)
	}
	b.available = false
	if _, err := s.Select(ctx, []*stubProvider{a, b}); !errors.Is(err, errors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
}

func TestRoundRobinSelector(t *testing.T) {
	a, b, c := newStub("a"), newStub("b"), newStub("c")
	candidates := []*stubProvider{a, b, c}
	s := &provider.RoundRobinSelector[*stubProvider]{}
	ctx := context.Background()

	var got []int
	for range 4 {
		idx, err := s.Select(ctx, candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, idx)
	}
	want := []int{0, 1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	b.available = false
	if idx, _ := s.Select(ctx, candidates); idx != 2 {
		t.Errorf("expected an unavailable candidate skipped, got %d", idx)
	}
	if _, err := s.Select(ctx, nil); !errors.Is(err, errors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
}

func rr(ps ...*stubProvider) []provider.RequestResponse[call, string] {
	out := make([]provider.RequestResponse[call, string], len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

func TestBalancer_Failover(t *testing.T) {
	primary, secondary := newStub("primary"), newStub("secondary")
	primary.err = errors.ConnectionFailed(stderrors.New("refused"))

	b := provider.NewBalancer[call, string]("users", nil, rr(primary, secondary)...).WithFailover()
	got, err := b.Execute(context.Background(), call{method: "GET", path: "/u"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "secondary:/u" {
		t.Errorf("expected the secondary reply, got %q", got)
	}
	if primary.calls.Load() != 1 || secondary.calls.Load() != 1 {
		t.Errorf("unexpected calls %d/%d", primary.calls.Load(), secondary.calls.Load())
	}
}

func TestBalancer_PermanentErrorStops(t *testing.T) {
	primary, secondary := newStub("primary"), newStub("secondary")
	primary.err = errors.HTTPClient(404, "Not Found", nil)

	b := provider.NewBalancer[call, string]("users", nil, rr(primary, secondary)...).WithFailover()
	if _, err := b.Execute(context.Background(), call{path: "/u"}); !errors.IsHTTPClientError(err) {
		t.Fatalf("expected the client error, got %v", err)
	}
	if secondary.calls.Load() != 0 {
		t.Error("a permanent failure must not fail over")
	}
}

func TestBalancer_WithoutFailover(t *testing.T) {
	primary, secondary := newStub("primary"), newStub("secondary")
	primary.err = errors.ConnectionFailed(nil)

	b := provider.NewBalancer[call, string]("users", nil, rr(primary, secondary)...)
	if _, err := b.Execute(context.Background(), call{}); !errors.IsConnection(err) {
		t.Fatalf("expected CONNECTION_FAILED, got %v", err)
	}
	if secondary.calls.Load() != 0 {
		t.Error("failover is off")
	}
}

func TestBalancer_AllFail(t *testing.T) {
	a, b := newStub("a"), newStub("b")
	a.err = errors.Timeout(nil)
	b.err = errors.HTTPServer(503, "Service Unavailable", nil)

	bal := provider.NewBalancer[call, string]("users", nil, rr(a, b)...).WithFailover()
	if _, err := bal.Execute(context.Background(), call{}); !errors.IsHTTPServerError(err) {
		t.Fatalf("expected the last failure, got %v", err)
	}
}

func TestBalancer_NoneAvailable(t *testing.T) {
	a := newStub("a")
	a.available = false
	bal := provider.NewBalancer[call, string]("users", &provider.RoundRobinSelector[provider.RequestResponse[call, string]]{}, rr(a)...)

	if bal.IsAvailable(context.Background()) {
		t.Error("expected unavailable")
	}
	if _, err := bal.Execute(context.Background(), call{}); !errors.Is(err, errors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if bal.Name() != "users" {
		t.Errorf("unexpected name %q", bal.Name())
	}
}
