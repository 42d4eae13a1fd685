package transport

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/http2"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/resilience"
)

// HTTP is a Transport backed by net/http.
type HTTP struct {
	client       *http.Client
	config       Config
	interceptors []Interceptor
	cb           *resilience.CircuitBreaker
	rl           *resilience.RateLimiter
	bh           *resilience.Bulkhead
	log          *logger.Logger
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithInterceptors appends interceptors; they run in order after default
// headers and authentication have been applied.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(t *HTTP) { t.interceptors = append(t.interceptors, interceptors...) }
}

// WithRoundTripper replaces the underlying round tripper. TLS, proxy and
// connection pool settings are then the round tripper's concern.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(t *HTTP) { t.client.Transport = rt }
}

// WithLogger sets the logger used for resilience events.
func WithLogger(l *logger.Logger) Option {
	return func(t *HTTP) { t.log = l }
}

// New creates an HTTP transport with the given configuration.
func New(cfg Config, opts ...Option) (*HTTP, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt, err := newRoundTripper(cfg)
	if err != nil {
		return nil, err
	}

	t := &HTTP{
		client: &http.Client{Transport: rt, Timeout: cfg.Timeout},
		config: cfg,
		log:    logger.Get("transport"),
	}

	base := []Interceptor{StaticHeaders(cfg.Headers), StaticHeaders(map[string]string{"User-Agent": cfg.UserAgent})}
	if auth := cfg.Auth.Interceptor(); auth != nil {
		base = append(base, auth)
	}
	t.interceptors = base

	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithFields(map[string]any{"transport": cfg.Name})

	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.Name == "" {
			cbCfg.Name = cfg.Name
		}
		userHook := cbCfg.OnStateChange
		cbCfg.OnStateChange = func(name string, from, to resilience.State) {
			t.log.Warn("circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
			if userHook != nil {
				userHook(name, from, to)
			}
		}
		t.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.RateLimiter != nil {
		t.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	if cfg.Bulkhead != nil {
		t.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return t, nil
}

func newRoundTripper(cfg Config) (*http.Transport, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConns = cfg.MaxIdleConns
	tr.MaxConnsPerHost = cfg.MaxConnsPerHost
	tr.MaxIdleConnsPerHost = cfg.MaxConnsPerHost
	tr.IdleConnTimeout = cfg.IdleConnTimeout

	if cfg.Proxy != "" {
		proxy, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, errors.InvalidConfig("transport: invalid proxy url", err)
		}
		tr.Proxy = http.ProxyURL(proxy)
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		tr.TLSClientConfig = tlsCfg
	}

	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, errors.InvalidConfig("transport: unable to enable http2", err)
		}
	}
	return tr, nil
}

// Do sends req. The returned response must be closed by the caller.
func (t *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	if t.rl != nil {
		if err := t.rl.Wait(ctx); err != nil {
			return nil, errors.ServiceUnavailable("rate limiter wait aborted", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	httpReq, err := t.build(ctx, req)
	if err != nil {
		cancel()
		return nil, err
	}

	var resp *http.Response
	send := func() error {
		var sendErr error
		resp, sendErr = t.client.Do(httpReq)
		if sendErr != nil {
			return classify(ctx, sendErr)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			// lets the circuit breaker count 5xx responses; the response is still returned
			return errors.HTTPServer(resp.StatusCode, "", nil)
		}
		return nil
	}
	guarded := send
	if t.cb != nil {
		guarded = func() error { return t.cb.Execute(send) }
	}
	if t.bh != nil {
		inner := guarded
		guarded = func() error { return t.bh.Execute(ctx, inner) }
	}

	err = guarded()
	if resp != nil {
		return NewResponse(resp.StatusCode, reasonPhrase(resp), resp.Header, resp.Body, cancel), nil
	}
	cancel()

	switch {
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return nil, errors.ServiceUnavailable("circuit breaker is open", err)
	case stderrors.Is(err, resilience.ErrBulkheadFull):
		return nil, errors.ServiceUnavailable("too many requests in flight", err)
	}
	if _, ok := errors.AsRestError(err); ok {
		return nil, err
	}
	return nil, classify(ctx, err)
}

// IsAvailable reports false while the circuit breaker is open.
func (t *HTTP) IsAvailable(_ context.Context) bool {
	return t.cb == nil || t.cb.State() != resilience.StateOpen
}

// CircuitState returns the breaker state, or StateClosed when no breaker is configured.
func (t *HTTP) CircuitState() resilience.State {
	if t.cb == nil {
		return resilience.StateClosed
	}
	return t.cb.State()
}

// Close releases idle connections.
func (t *HTTP) Close(_ context.Context) error {
	t.client.CloseIdleConnections()
	return nil
}

// Config returns the effective configuration.
func (t *HTTP) Config() Config {
	return t.config
}

func (t *HTTP) build(ctx context.Context, req *Request) (*http.Request, error) {
	if req.URL == nil {
		return nil, errors.URLConstruction("", stderrors.New("request has no url"))
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), req.Body)
	if err != nil {
		return nil, errors.URLConstruction(req.URL.String(), err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	for _, intercept := range t.interceptors {
		if intercept == nil {
			continue
		}
		if err := intercept(httpReq); err != nil {
			return nil, err
		}
	}
	return httpReq, nil
}

// classify converts a net/http error into the client taxonomy.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.Timeout(err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout(err)
	}
	return errors.ConnectionFailed(err)
}

func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
