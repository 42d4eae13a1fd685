package endpoint_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/endpoint"
	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/resttest"
	"github.com/kbukum/restkit/serializer"
	"github.com/kbukum/restkit/transport"
)

type item struct {
	ID    string   `json:"id" yaml:"id"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Count int      `json:"count" yaml:"count"`
}

func newEndpoint(t *testing.T, baseURL string, opts ...endpoint.Option) *endpoint.Endpoint {
	t.Helper()
	opts = append([]endpoint.Option{endpoint.WithLogger(logger.Nop())}, opts...)
	e, err := endpoint.New(endpoint.Config{Name: "items", BaseURL: baseURL}, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func TestEndpoint_PostEcho(t *testing.T) {
	srv := resttest.New(t, resttest.WithEcho())
	e := newEndpoint(t, srv.URL())

	in := item{ID: "a1", Tags: []string{"x", "y"}, Count: 3}
	got, err := endpoint.Post[item](e, context.Background(), "/", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != in.ID || got.Count != in.Count || len(got.Tags) != 2 {
		t.Errorf("expected %+v, got %+v", in, got)
	}
	if srv.RequestCount() != 1 {
		t.Fatalf("expected exactly one request, got %d", srv.RequestCount())
	}

	req, _ := srv.TakeRequest()
	if req.Method != http.MethodPost || req.ContentType() != serializer.MimeTypeJSON {
		t.Errorf("unexpected request %s %q", req.Method, req.ContentType())
	}
	if ua := req.Header.Get("User-Agent"); ua == "" {
		t.Error("expected a user agent")
	}
}

func TestEndpoint_MethodsOnTheWire(t *testing.T) {
	srv := resttest.New(t)
	e := newEndpoint(t, srv.URL()+"/api")
	ctx := context.Background()

	calls := []struct {
		method string
		call   func() error
	}{
		{http.MethodGet, func() error { _, err := e.Get(ctx, "/items", serializer.Type{}); return err }},
		{http.MethodDelete, func() error { _, err := e.Delete(ctx, "/items/1", serializer.Type{}); return err }},
		{http.MethodPost, func() error { _, err := e.Post(ctx, "/items", item{ID: "1"}, serializer.Type{}); return err }},
		{http.MethodPut, func() error { _, err := e.Put(ctx, "/items/1", item{ID: "1"}, serializer.Type{}); return err }},
		{http.MethodPatch, func() error { _, err := e.Patch(ctx, "/items/1", item{Count: 2}, serializer.Type{}); return err }},
	}
	for _, c := range calls {
		if err := c.call(); err != nil {
			t.Fatalf("%s: unexpected error: %v", c.method, err)
		}
		req, ok := srv.TakeRequest()
		if !ok || req.Method != c.method {
			t.Fatalf("expected a %s request, got %+v", c.method, req)
		}
		if c.method == http.MethodGet || c.method == http.MethodDelete {
			if len(req.Body) != 0 {
				t.Errorf("%s: expected no body, got %q", c.method, req.Body)
			}
			continue
		}
		var sent item
		if err := json.Unmarshal(req.Body, &sent); err != nil {
			t.Errorf("%s: expected a JSON body: %v", c.method, err)
		}
	}
}

func TestEndpoint_QueryAndBasePath(t *testing.T) {
	srv := resttest.New(t)
	srv.Enqueue(resttest.JSON(http.StatusOK, []item{{ID: "1"}, {ID: "2"}}))
	e := newEndpoint(t, srv.URL()+"/v2?tenant=acme")

	got, err := endpoint.Get[[]item](e, context.Background(), "items?sort=id",
		endpoint.WithQuery(map[string][]string{"page": {"1", "2"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].ID != "2" {
		t.Errorf("unexpected result %+v", got)
	}

	req, _ := srv.TakeRequest()
	if req.Path != "/v2/items" {
		t.Errorf("unexpected path %q", req.Path)
	}
	if req.Query.Get("tenant") != "acme" || req.Query.Get("sort") != "id" || len(req.Query["page"]) != 2 {
		t.Errorf("unexpected query %v", req.Query)
	}
}

func TestEndpoint_Multipart(t *testing.T) {
	srv := resttest.New(t)
	srv.Enqueue(resttest.JSON(http.StatusCreated, item{ID: "upload-1"}))
	e := newEndpoint(t, srv.URL())

	parts := endpoint.NewMultiPartRequest().
		AddSerialized("meta", item{ID: "doc", Count: 1}).
		AddBinary("file", "application/pdf", "report.pdf", []byte("%PDF-1.7"))

	got, err := endpoint.PostMultipart[item](e, context.Background(), "/uploads", parts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "upload-1" {
		t.Errorf("unexpected result %+v", got)
	}

	req, _ := srv.TakeRequest()
	recorded, err := req.Parts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(recorded))
	}
	if recorded[0].Name != "meta" || recorded[0].ContentType != serializer.MimeTypeJSON {
		t.Errorf("unexpected serialized part %+v", recorded[0])
	}
	var meta item
	if err := json.Unmarshal(recorded[0].Data, &meta); err != nil || meta.ID != "doc" {
		t.Errorf("unexpected serialized data %q", recorded[0].Data)
	}
	if recorded[1].Filename != "report.pdf" || recorded[1].ContentType != "application/pdf" ||
		!bytes.Equal(recorded[1].Data, []byte("%PDF-1.7")) {
		t.Errorf("unexpected binary part %+v", recorded[1])
	}
}

func TestEndpoint_YAMLNegotiation(t *testing.T) {
	srv := resttest.New(t)
	srv.Enqueue(resttest.Raw(http.StatusOK, "application/yaml; charset=utf-8", []byte("id: y1\ncount: 4\n")))
	e := newEndpoint(t, srv.URL(), endpoint.WithSerializers(serializer.NewYAML(), serializer.NewJSON()))

	got, err := endpoint.Put[item](e, context.Background(), "/items/y1", item{ID: "y1", Count: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Count != 4 {
		t.Errorf("unexpected result %+v", got)
	}
	req, _ := srv.TakeRequest()
	if req.ContentType() != serializer.MimeTypeYAML {
		t.Errorf("expected the first serializer to encode, got %q", req.ContentType())
	}
}

func TestEndpoint_NoContentTypeOnTheWire(t *testing.T) {
	srv := resttest.New(t)
	srv.Enqueue(
		resttest.Raw(http.StatusOK, "", []byte(`{"id":"1"}`)),
		resttest.Raw(http.StatusOK, "", []byte(`{"id":"2"}`)),
	)

	e := newEndpoint(t, srv.URL())
	if _, err := endpoint.Get[item](e, context.Background(), "/items/1"); !errors.IsNoSerializer(err) {
		t.Fatalf("expected NO_SERIALIZER, got %v", err)
	}

	detecting, err := endpoint.New(endpoint.Config{BaseURL: srv.URL(), DetectContentType: true}, endpoint.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := endpoint.Get[item](detecting, context.Background(), "/items/2")
	if err != nil || got.ID != "2" {
		t.Fatalf("expected detection to decode, got %+v %v", got, err)
	}
}

func TestEndpoint_ErrorResponses(t *testing.T) {
	srv := resttest.New(t)
	srv.Enqueue(
		resttest.JSON(http.StatusConflict, map[string]any{"error": map[string]any{"code": "DUPLICATE", "message": "already exists"}}),
		resttest.Text(http.StatusBadGateway, "upstream down"),
	)
	e := newEndpoint(t, srv.URL())

	_, err := e.Post(context.Background(), "/items", item{ID: "dup"}, serializer.TypeOf[item]())
	re, ok := errors.AsRestError(err)
	if !ok || re.Code != errors.ErrCodeHTTPClient || re.StatusCode != http.StatusConflict {
		t.Fatalf("expected HTTP_CLIENT_ERROR 409, got %v", err)
	}
	if remote, ok := re.RemoteError(); !ok || remote.Code != "DUPLICATE" {
		t.Errorf("unexpected remote error %+v", remote)
	}

	_, err = e.Get(context.Background(), "/items", serializer.TypeOf[item]())
	re, ok = errors.AsRestError(err)
	if !ok || re.Code != errors.ErrCodeHTTPServer || string(re.Content) != "upstream down" || !re.Retryable {
		t.Fatalf("expected retryable HTTP_SERVER_ERROR with content, got %v", err)
	}
}

func TestEndpoint_Timeout(t *testing.T) {
	srv := resttest.New(t)
	srv.Enqueue(resttest.Status(http.StatusOK).WithDelay(time.Second))

	e, err := endpoint.New(endpoint.Config{
		BaseURL:   srv.URL(),
		Transport: transport.Config{Timeout: 50 * time.Millisecond},
	}, endpoint.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.Get(context.Background(), "/slow", serializer.Type{}); !errors.IsTimeout(err) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	srv := resttest.New(t)
	srv.Enqueue(resttest.JSON(http.StatusOK, item{ID: "c1"}))
	ctx := context.Background()

	c := endpoint.NewComponent(endpoint.Config{Name: "catalog", BaseURL: srv.URL()}, endpoint.WithLogger(logger.Nop()))
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if _, err := c.Endpoint(); !errors.Is(err, errors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE before start, got %v", err)
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy || h.Name != "catalog" {
		t.Errorf("unexpected health %+v", h)
	}
	d := c.Describe()
	if d.Type != "rest-endpoint" || d.Name != "catalog" {
		t.Errorf("unexpected description %+v", d)
	}

	e, err := c.Endpoint()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := endpoint.Get[item](e, ctx, "/items/c1")
	if err != nil || got.ID != "c1" {
		t.Errorf("unexpected result %+v %v", got, err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComponent_StartInvalidConfig(t *testing.T) {
	c := endpoint.NewComponent(endpoint.Config{BaseURL: "not-absolute"})
	if err := c.Start(context.Background()); !errors.IsURLConstruction(err) {
		t.Fatalf("expected URL_CONSTRUCTION, got %v", err)
	}
}
