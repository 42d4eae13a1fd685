package endpoint

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/provider"
	"github.com/kbukum/restkit/serializer"
	"github.com/kbukum/restkit/status"
	"github.com/kbukum/restkit/transport"
)

// Endpoint executes commands against a single base URL.
type Endpoint struct {
	config      Config
	base        *url.URL
	transport   transport.Transport
	serializers *serializer.Registry
	errors      ErrorHandler
	hooks       *ErrorHooks
	log         *logger.Logger
}

var _ provider.RequestResponse[*Command, any] = (*Endpoint)(nil)
var _ provider.Labeled = (*Command)(nil)

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithTransport replaces the default HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(e *Endpoint) { e.transport = t }
}

// WithSerializers sets the serializers consulted, in order, for request and
// response bodies. Defaults to raw bytes then JSON.
func WithSerializers(serializers ...serializer.Serializer) Option {
	return func(e *Endpoint) { e.serializers = serializer.NewRegistry(serializers...) }
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(e *Endpoint) { e.errors = h }
}

// WithErrorHooks customizes the errors built by the default error handler.
func WithErrorHooks(hooks ErrorHooks) Option {
	return func(e *Endpoint) { e.hooks = &hooks }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Endpoint) { e.log = l }
}

// New creates an endpoint. A base URL that is not absolute fails with
// URL_CONSTRUCTION.
func New(cfg Config, opts ...Option) (*Endpoint, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	e := &Endpoint{
		config: cfg,
		base:   base,
		log:    logger.Get("endpoint"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithFields(map[string]any{logger.FieldEndpoint: cfg.Name})

	if e.serializers == nil {
		e.serializers = serializer.NewRegistry(serializer.Defaults()...)
	}
	if e.errors == nil {
		hooks := ErrorHooks{}
		if e.hooks != nil {
			hooks = *e.hooks
		}
		e.errors = NewErrorHandler(hooks, e.log)
	}
	if e.transport == nil {
		t, err := transport.New(cfg.Transport, transport.WithLogger(e.log))
		if err != nil {
			return nil, err
		}
		e.transport = t
	}
	return e, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.URLConstruction(raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, errors.URLConstruction(raw, stderrors.New("base url must be absolute"))
	}
	return u, nil
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string { return e.config.Name }

// BaseURL returns a copy of the base URL.
func (e *Endpoint) BaseURL() *url.URL {
	u := *e.base
	return &u
}

// Serializers returns the serializer registry.
func (e *Endpoint) Serializers() *serializer.Registry { return e.serializers }

// IsAvailable reports whether the transport accepts calls.
func (e *Endpoint) IsAvailable(ctx context.Context) bool {
	if a, ok := e.transport.(interface{ IsAvailable(context.Context) bool }); ok {
		return a.IsAvailable(ctx)
	}
	return true
}

// Close releases transport resources.
func (e *Endpoint) Close(ctx context.Context) error {
	if c, ok := e.transport.(provider.Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}

// Execute runs cmd and returns the decoded response, or nil when the
// command expects no result or the server answered 204 No Content.
func (e *Endpoint) Execute(ctx context.Context, cmd *Command) (any, error) {
	if cmd == nil {
		return nil, errors.InvalidCommand("command is nil")
	}
	if !supportedMethods[cmd.Method] {
		return nil, errors.UnsupportedMethod(cmd.Method)
	}
	if readOnly(cmd.Method) && cmd.HasBody() {
		return nil, errors.InvalidCommand(fmt.Sprintf("%s request must not carry a body", cmd.Method)).
			WithDetail(errors.DetailMethod, cmd.Method)
	}

	u, err := e.resolve(cmd.URI, cmd.Query)
	if err != nil {
		return nil, err
	}
	req := transport.NewRequest(cmd.Method, u)
	for k, vs := range cmd.Header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if !readOnly(cmd.Method) {
		body, contentType, err := e.encode(cmd)
		if err != nil {
			return nil, err
		}
		req.Body, req.ContentType = body, contentType
	}

	start := time.Now()
	fields := logger.Fields(logger.FieldMethod, cmd.Method, logger.FieldURL, u.Redacted())

	resp, err := e.transport.Do(ctx, req)
	if err != nil {
		e.logFailure(fields, start, err)
		return nil, err
	}
	fields[logger.FieldStatus] = resp.StatusCode

	result, err := e.read(resp, cmd.ResponseType)
	if err != nil {
		e.logFailure(fields, start, err)
		return nil, err
	}
	e.log.Debug("rest call completed", logger.MergeWithDuration(fields, time.Since(start)))
	return result, nil
}

// resolve appends the resource path to the base path and merges the base,
// resource and supplied queries. Dot segments are cleaned; a resource that
// climbs above the base path is rejected.
func (e *Endpoint) resolve(resource string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(resource)
	if err != nil {
		return nil, errors.URLConstruction(resource, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, errors.URLConstruction(resource, stderrors.New("resource must be relative to the base url"))
	}

	u := e.BaseURL()
	if p := ref.EscapedPath(); p != "" {
		u = u.JoinPath(p)
	}
	if !withinBase(e.base.Path, u.Path) {
		return nil, errors.URLConstruction(resource, stderrors.New("resource escapes the base path"))
	}
	u.Fragment, u.RawFragment = "", ""

	q := e.base.Query()
	for k, vs := range ref.Query() {
		q[k] = append(q[k], vs...)
	}
	for k, vs := range query {
		q[k] = append(q[k], vs...)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

func withinBase(base, p string) bool {
	base = strings.TrimSuffix(base, "/")
	return base == "" || p == base || strings.HasPrefix(p, base+"/")
}

// encode selects a serializer for the command body. A nil body sends no entity.
func (e *Endpoint) encode(cmd *Command) (io.Reader, string, error) {
	if cmd.Multipart != nil {
		return cmd.Multipart.encode(e.serializers)
	}
	if isNil(cmd.Body) {
		return nil, "", nil
	}
	s, err := e.serializers.ForWrite(cmd.Body)
	if err != nil {
		return nil, "", err
	}
	r, err := s.Serialize(cmd.Body)
	if err != nil {
		return nil, "", err
	}
	return r, s.MimeType(), nil
}

// read turns a response into a result. resp is released on every path.
func (e *Endpoint) read(resp *transport.Response, t serializer.Type) (any, error) {
	defer e.release(resp)

	if _, err := status.Classify(resp.StatusCode); err != nil {
		return nil, err
	}
	if e.errors.HasError(resp) {
		err := e.errors.Handle(resp)
		if err == nil {
			err = errors.HTTPGeneric(resp.StatusCode, resp.Reason, nil)
		}
		return nil, err
	}
	if t.IsZero() || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TransportRead(err)
	}

	contentType := resp.ContentType()
	if contentType == "" && e.config.DetectContentType && len(data) > 0 {
		contentType = mimetype.Detect(data).String()
		e.log.Debug("detected response content type", logger.Fields(logger.FieldContentType, contentType))
	}
	s, err := e.serializers.ForRead(contentType)
	if err != nil {
		return nil, err
	}
	return s.Deserialize(data, t)
}

func (e *Endpoint) release(resp *transport.Response) {
	if err := resp.Close(); err != nil {
		e.log.Warn("failed to release response", logger.Fields(
			logger.FieldStatus, resp.StatusCode,
			logger.FieldError, err.Error(),
		))
	}
}

func (e *Endpoint) logFailure(fields map[string]any, start time.Time, err error) {
	fields = logger.MergeWithDuration(fields, time.Since(start))
	fields[logger.FieldError] = err.Error()
	if code := errors.CodeOf(err); code != "" {
		fields[logger.FieldErrorCode] = string(code)
	}
	e.log.Debug("rest call failed", fields)
}
