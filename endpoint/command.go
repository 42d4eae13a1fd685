package endpoint

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/serializer"
)

// Supported request methods.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodPatch  = http.MethodPatch
	MethodDelete = http.MethodDelete
)

var supportedMethods = map[string]bool{
	MethodGet:    true,
	MethodPost:   true,
	MethodPut:    true,
	MethodPatch:  true,
	MethodDelete: true,
}

// readOnly methods never carry an entity.
func readOnly(method string) bool {
	return method == MethodGet || method == MethodDelete
}

// Command is a single REST call: where to send it, how, with what body and
// what shape to decode the response into.
type Command struct {
	// URI is the resource path, optionally with a query string, resolved
	// against the endpoint base URL.
	URI string
	// Method is the HTTP method.
	Method string
	// Body is encoded by the first serializer that accepts it. Nil sends no entity.
	Body any
	// Multipart, when set, is sent instead of Body.
	Multipart *MultiPartRequest
	// ResponseType is the decoded shape; the zero Type discards the body.
	ResponseType serializer.Type
	// Query is merged into the resource query.
	Query url.Values
	// Header holds per-call headers.
	Header http.Header
}

// RequestOption customizes a command.
type RequestOption func(*Command)

// WithQuery merges query parameters into the request.
func WithQuery(values url.Values) RequestOption {
	return func(c *Command) {
		for k, vs := range values {
			for _, v := range vs {
				c.query().Add(k, v)
			}
		}
	}
}

// WithQueryParam adds a single query parameter.
func WithQueryParam(key, value string) RequestOption {
	return func(c *Command) { c.query().Add(key, value) }
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(c *Command) { c.header().Set(key, value) }
}

// WithHeaders sets several request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(c *Command) {
		for k, v := range headers {
			c.header().Set(k, v)
		}
	}
}

// NewCommand builds a command. GET and DELETE commands carrying a body are
// rejected with INVALID_COMMAND; DELETE follows the same rule as GET. An
// unsupported method is accepted here and fails when executed.
func NewCommand(uri, method string, body any, responseType serializer.Type, opts ...RequestOption) (*Command, error) {
	if readOnly(method) && !isNil(body) {
		return nil, errors.InvalidCommand(fmt.Sprintf("%s request must not carry a body", method)).
			WithDetail(errors.DetailMethod, method)
	}
	c := &Command{URI: uri, Method: method, Body: body, ResponseType: responseType}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewMultipartCommand builds a command sending a multipart/form-data body.
func NewMultipartCommand(uri, method string, parts *MultiPartRequest, responseType serializer.Type, opts ...RequestOption) (*Command, error) {
	if readOnly(method) && parts != nil {
		return nil, errors.InvalidCommand(fmt.Sprintf("%s request must not carry a body", method)).
			WithDetail(errors.DetailMethod, method)
	}
	c, err := NewCommand(uri, method, nil, responseType, opts...)
	if err != nil {
		return nil, err
	}
	c.Multipart = parts
	return c, nil
}

// NewTypedCommand builds a command decoding the response into T.
func NewTypedCommand[T any](uri, method string, body any, opts ...RequestOption) (*Command, error) {
	return NewCommand(uri, method, body, serializer.TypeOf[T](), opts...)
}

// HasBody reports whether the command carries an entity.
func (c *Command) HasBody() bool {
	return c.Multipart != nil || !isNil(c.Body)
}

// Labels describes the command to logging, tracing and metrics middleware.
func (c *Command) Labels() map[string]string {
	return map[string]string{"method": c.Method, "uri": c.URI}
}

func (c *Command) query() url.Values {
	if c.Query == nil {
		c.Query = make(url.Values)
	}
	return c.Query
}

func (c *Command) header() http.Header {
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	return c.Header
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
