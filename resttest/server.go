package resttest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// RecordedRequest is a request as the server received it.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// ContentType returns the request Content-Type header.
func (r RecordedRequest) ContentType() string {
	return r.Header.Get("Content-Type")
}

// RecordedPart is one section of a multipart request.
type RecordedPart struct {
	Name        string
	Filename    string
	ContentType string
	Data        []byte
}

// Parts decodes a multipart request body.
func (r RecordedRequest) Parts() ([]RecordedPart, error) {
	mediaType, params, err := mime.ParseMediaType(r.ContentType())
	if err != nil {
		return nil, err
	}
	if mediaType != "multipart/form-data" {
		return nil, fmt.Errorf("resttest: not a multipart request: %s", mediaType)
	}

	mr := multipart.NewReader(bytes.NewReader(r.Body), params["boundary"])
	var parts []RecordedPart
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return parts, nil
		}
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, RecordedPart{
			Name:        p.FormName(),
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Data:        data,
		})
	}
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the component name.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithEcho answers every request without a queued response by sending its
// body back with the same content type.
func WithEcho() Option {
	return func(s *Server) { s.echo = true }
}

// WithFallback sets the reply used when the queue is empty and echo is off.
// Defaults to an empty 200.
func WithFallback(r Response) Option {
	return func(s *Server) { s.fallback = r }
}

// Server is a scripted HTTP server.
// It implements both component.Component and testutil.TestComponent.
type Server struct {
	name     string
	echo     bool
	fallback Response

	mu       sync.Mutex
	ts       *httptest.Server
	queue    []Response
	requests []RecordedRequest
	received int
}

var _ component.Component = (*Server)(nil)
var _ testutil.TestComponent = (*Server)(nil)

// NewServer creates a server. It listens once started.
func NewServer(opts ...Option) *Server {
	s := &Server{name: "resttest", fallback: Status(http.StatusOK)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates and starts a server that is stopped when the test ends.
func New(t *testing.T, opts ...Option) *Server {
	t.Helper()
	s := NewServer(opts...)
	testutil.T(t).Setup(s)
	return s
}

// URL returns the base URL, or "" before Start.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Enqueue appends replies served in order, one per request.
func (s *Server) Enqueue(responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, responses...)
}

// TakeRequest removes and returns the oldest recorded request.
func (s *Server) TakeRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	r := s.requests[0]
	s.requests = s.requests[1:]
	return r, true
}

// Requests returns the recorded requests not yet taken.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestCount returns how many requests were received since start or the
// last Reset, including taken ones.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}

func (s *Server) handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	s.received++
	reply := s.fallback
	switch {
	case len(s.queue) > 0:
		reply = s.queue[0]
		s.queue = s.queue[1:]
	case s.echo:
		reply = Raw(http.StatusOK, c.GetHeader("Content-Type"), body)
	}
	s.mu.Unlock()

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-c.Request.Context().Done():
			return
		}
	}
	write(c, reply)
}

func write(c *gin.Context, r Response) {
	for k, v := range r.Header {
		c.Header(k, v)
	}
	if r.ContentType != "" {
		c.Header("Content-Type", r.ContentType)
	} else {
		// suppresses net/http content sniffing
		c.Writer.Header()["Content-Type"] = nil
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)
	c.Writer.WriteHeaderNow()
	if len(r.Body) > 0 && status != http.StatusNoContent && status != http.StatusNotModified {
		_, _ = c.Writer.Write(r.Body)
	}
}

// --- component.Component ---

func (s *Server) Name() string { return s.name }

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts != nil {
		return fmt.Errorf("resttest: server %s already started", s.name)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.NoRoute(s.handle)
	s.ts = httptest.NewServer(engine)
	return nil
}

func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	ts := s.ts
	s.ts = nil
	s.mu.Unlock()
	if ts != nil {
		ts.Close()
	}
	return nil
}

func (s *Server) Health(_ context.Context) component.Health {
	if s.URL() == "" {
		return component.Health{Name: s.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.name, Status: component.StatusHealthy}
}

// --- testutil.TestComponent ---

type snapshot struct {
	queue    []Response
	requests []RecordedRequest
	received int
}

// Reset drops queued replies and recorded requests.
func (s *Server) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue, s.requests, s.received = nil, nil, 0
	return nil
}

// Snapshot captures queued replies and recorded requests.
func (s *Server) Snapshot(_ context.Context) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		queue:    append([]Response(nil), s.queue...),
		requests: append([]RecordedRequest(nil), s.requests...),
		received: s.received,
	}, nil
}

// Restore returns to a state captured by Snapshot.
func (s *Server) Restore(_ context.Context, snap any) error {
	st, ok := snap.(snapshot)
	if !ok {
		return fmt.Errorf("resttest: unexpected snapshot type %T", snap)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append([]Response(nil), st.queue...)
	s.requests = append([]RecordedRequest(nil), st.requests...)
	s.received = st.received
	return nil
}
