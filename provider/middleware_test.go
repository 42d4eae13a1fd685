package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/provider"
)

type orderTracker[I, O any] struct {
	inner provider.RequestResponse[I, O]
	label string
	order *[]string
}

func (o *orderTracker[I, O]) Name() string                         { return o.inner.Name() }
func (o *orderTracker[I, O]) IsAvailable(ctx context.Context) bool { return o.inner.IsAvailable(ctx) }
func (o *orderTracker[I, O]) Execute(ctx context.Context, input I) (O, error) {
	*o.order = append(*o.order, o.label)
	return o.inner.Execute(ctx, input)
}

func track(label string, order *[]string) provider.Middleware[call, string] {
	return func(inner provider.RequestResponse[call, string]) provider.RequestResponse[call, string] {
		return &orderTracker[call, string]{inner: inner, label: label, order: order}
	}
}

func TestChain(t *testing.T) {
	p := newStub("users")

	wrapped := provider.Chain[call, string]()(p)
	if got, err := wrapped.Execute(context.Background(), call{path: "/a"}); err != nil || got != "users:/a" {
		t.Fatalf("expected passthrough, got %q %v", got, err)
	}

	var order []string
	wrapped = provider.Chain(track("a", &order), track("b", &order), track("c", &order))(p)
	if _, err := wrapped.Execute(context.Background(), call{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("expected the first middleware outermost, got %v", order)
	}
	if wrapped.Name() != "users" || !wrapped.IsAvailable(context.Background()) {
		t.Error("expected Name and IsAvailable to delegate")
	}
}

func TestChain_SkipsNilAndApply(t *testing.T) {
	var order []string
	p := provider.Apply[call, string](newStub("users"),
		track("outer", &order),
		nil,
		provider.Resilient[call, string](provider.ResilienceConfig{}),
		track("inner", &order),
	)
	if _, err := p.Execute(context.Background(), call{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("unexpected order %v", order)
	}
	if provider.Resilient[call, string](provider.ResilienceConfig{}) != nil {
		t.Error("expected an empty resilience config to yield no middleware")
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	ok := newStub("users")
	wrapped := provider.WithLogging[call, string](log)(ok)
	if _, err := wrapped.Execute(context.Background(), call{method: "GET", path: "/u/1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry := lastEntry(t, &buf)
	if entry["message"] != "provider execute ok" || entry["method"] != "GET" || entry["provider"] != "users" {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry[logger.FieldDuration]; !ok {
		t.Error("expected a duration")
	}

	failing := newStub("users")
	failing.err = errors.HTTPServer(502, "Bad Gateway", nil)
	wrapped = provider.WithLogging[call, string](log)(failing)
	if _, err := wrapped.Execute(context.Background(), call{method: "POST"}); err == nil {
		t.Fatal("expected error")
	}
	entry = lastEntry(t, &buf)
	if entry["level"] != "warn" || entry[logger.FieldErrorCode] != string(errors.ErrCodeHTTPServer) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	return m
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	}()

	p := newStub("users")
	wrapped := provider.WithTracing[call, string]("billing")(p)
	if _, err := wrapped.Execute(context.Background(), call{method: "GET", path: "/u"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.err = errors.HTTPClient(404, "Not Found", nil)
	if _, err := wrapped.Execute(context.Background(), call{method: "GET", path: "/missing"}); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "billing.users" || spans[0].Status.Code == codes.Error {
		t.Errorf("unexpected first span %s %v", spans[0].Name, spans[0].Status)
	}

	failed := spans[1]
	if failed.Status.Code != codes.Error {
		t.Errorf("expected an error status, got %v", failed.Status)
	}
	attrs := map[string]string{}
	for _, kv := range failed.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["method"] != "GET" || attrs["path"] != "/missing" {
		t.Errorf("expected input labels as attributes, got %v", attrs)
	}
	if attrs[observability.AttrErrorCode] != string(errors.ErrCodeHTTPClient) || attrs[observability.AttrStatusCode] != "404" {
		t.Errorf("expected error attributes, got %v", attrs)
	}
}

func TestWithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := observability.NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	p := newStub("users")
	wrapped := provider.WithMetrics[call, string](metrics)(p)
	ctx := context.Background()
	_, _ = wrapped.Execute(ctx, call{method: "GET"})
	p.err = errors.Timeout(nil)
	_, _ = wrapped.Execute(ctx, call{method: "GET"})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var calls, failures int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case observability.MetricRequestTotal:
					calls += dp.Value
				case observability.MetricErrorTotal:
					if v, _ := dp.Attributes.Value("code"); v.AsString() == string(errors.ErrCodeTimeout) {
						failures += dp.Value
					}
				}
			}
		}
	}
	if calls != 2 || failures != 1 {
		t.Errorf("expected 2 calls and 1 timeout, got %d and %d", calls, failures)
	}
}

func TestChain_AllMiddlewares(t *testing.T) {
	metrics, err := observability.NewClientMetrics(observability.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	wrapped := provider.Chain(
		provider.WithLogging[call, string](logger.Nop()),
		provider.WithMetrics[call, string](metrics),
		provider.WithTracing[call, string]("test-svc"),
	)(newStub("full-stack"))

	result, err := wrapped.Execute(context.Background(), call{path: "/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "full-stack:/x" {
		t.Fatalf("unexpected result %q", result)
	}
}
