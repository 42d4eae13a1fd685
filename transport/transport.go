package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
)

// Transport dispatches a request and returns the raw response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Request is a fully resolved outgoing request.
type Request struct {
	// Method is the HTTP method.
	Method string
	// URL is the absolute destination.
	URL *url.URL
	// Header holds request-specific headers; they override transport defaults.
	Header http.Header
	// Body is the serialized entity, nil for bodyless requests.
	Body io.Reader
	// ContentType describes Body.
	ContentType string
}

// NewRequest creates a request with an empty header set.
func NewRequest(method string, u *url.URL) *Request {
	return &Request{Method: method, URL: u, Header: make(http.Header)}
}

// Response is the raw result of a dispatched request. Body may be read once;
// Close must be called on every path and is safe to call repeatedly.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Reason is the status reason phrase, e.g. "Not Found".
	Reason string
	// Header holds the response headers.
	Header http.Header
	// Body streams the response entity.
	Body io.ReadCloser

	abort    func()
	once     sync.Once
	released atomic.Bool
}

// NewResponse creates a response. abort, if non-nil, runs after the body is
// closed and cancels whatever is still in flight for the request.
func NewResponse(statusCode int, reason string, header http.Header, body io.ReadCloser, abort func()) *Response {
	if header == nil {
		header = make(http.Header)
	}
	if body == nil {
		body = http.NoBody
	}
	if reason == "" {
		reason = http.StatusText(statusCode)
	}
	return &Response{
		StatusCode: statusCode,
		Reason:     reason,
		Header:     header,
		Body:       body,
		abort:      abort,
	}
}

// ContentType returns the Content-Type header, or "" when absent.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Close releases the body and aborts the request. Only the first call has
// an effect; later calls return nil.
func (r *Response) Close() error {
	var err error
	r.once.Do(func() {
		err = r.Body.Close()
		if r.abort != nil {
			r.abort()
		}
		r.released.Store(true)
	})
	return err
}

// Released reports whether Close has run.
func (r *Response) Released() bool {
	return r.released.Load()
}
