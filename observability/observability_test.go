package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/errors"
)

func useInMemoryTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 || !cfg.Insecure {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig("svc"), false},
		{"missing service", Config{Endpoint: "localhost:4318"}, true},
		{"sample rate above one", Config{ServiceName: "svc", Endpoint: "x:1", SampleRate: 1.5}, true},
		{"negative sample rate", Config{ServiceName: "svc", Endpoint: "x:1", SampleRate: -0.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestConfig_ApplyDefaultsKeepsZeroSampleRate(t *testing.T) {
	cfg := Config{ServiceName: "svc"}
	cfg.ApplyDefaults()
	if cfg.SampleRate != 0 || cfg.Endpoint == "" || cfg.Interval == 0 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("expected a ratio sampler, got %s", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "billing", ServiceVersion: "2.1.0", Environment: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[attribute.Key]string{
		AttrServiceName:    "billing",
		AttrServiceVersion: "2.1.0",
		AttrEnvironment:    "test",
	}
	for key, value := range want {
		got, ok := res.Set().Value(key)
		if !ok || got.AsString() != value {
			t.Errorf("expected %s=%s, got %v", key, value, got.Emit())
		}
	}
}

func TestStartSpan(t *testing.T) {
	exporter := useInMemoryTracer(t)

	ctx, span := StartSpan(context.Background(), SpanRESTCall)
	if SpanFromContext(ctx) != span {
		t.Error("expected the span in context")
	}
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "string-slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != SpanRESTCall {
		t.Fatalf("unexpected spans %+v", spans)
	}
	if got := len(spans[0].Attributes); got != 6 {
		t.Errorf("expected 6 attributes, got %d", got)
	}
}

func TestSetSpanError(t *testing.T) {
	exporter := useInMemoryTracer(t)

	ctx, span := StartSpan(context.Background(), "test-error")
	SetSpanError(ctx, fmt.Errorf("test error"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error || spans[0].Status.Description != "test error" {
		t.Errorf("unexpected status %+v", spans[0].Status)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected the error recorded as an event, got %d events", len(spans[0].Events))
	}
}

func TestSpanHelpersWithoutSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("no span error"))
}

func TestClientMetrics_Noop(t *testing.T) {
	metrics, err := NewClientMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordStart(ctx, "users")
	metrics.RecordEnd(ctx, "users", "GET", OutcomeOK, 100*time.Millisecond)
	metrics.RecordError(ctx, "users", "TIMEOUT")
}

func TestClientMetrics_Recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	metrics.RecordStart(ctx, "users")
	metrics.RecordEnd(ctx, "users", "POST", OutcomeError, 20*time.Millisecond)
	metrics.RecordError(ctx, "users", "HTTP_SERVER_ERROR")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = m.Data
		}
	}

	total, ok := got[MetricRequestTotal].(metricdata.Sum[int64])
	if !ok || len(total.DataPoints) != 1 || total.DataPoints[0].Value != 1 {
		t.Fatalf("unexpected %s: %+v", MetricRequestTotal, got[MetricRequestTotal])
	}
	if v, _ := total.DataPoints[0].Attributes.Value("outcome"); v.AsString() != OutcomeError {
		t.Errorf("unexpected outcome %v", v.Emit())
	}

	active, ok := got[MetricRequestActive].(metricdata.Sum[int64])
	if !ok || len(active.DataPoints) != 1 || active.DataPoints[0].Value != 0 {
		t.Errorf("expected no calls in flight, got %+v", got[MetricRequestActive])
	}

	errs, ok := got[MetricErrorTotal].(metricdata.Sum[int64])
	if !ok || len(errs.DataPoints) != 1 {
		t.Fatalf("unexpected %s: %+v", MetricErrorTotal, got[MetricErrorTotal])
	}
	if v, _ := errs.DataPoints[0].Attributes.Value("code"); v.AsString() != "HTTP_SERVER_ERROR" {
		t.Errorf("unexpected code %v", v.Emit())
	}

	if _, ok := got[MetricRequestDuration].(metricdata.Histogram[float64]); !ok {
		t.Errorf("expected a duration histogram, got %+v", got[MetricRequestDuration])
	}
}

type stubComponent struct {
	name   string
	status component.HealthStatus
}

func (s stubComponent) Name() string                { return s.name }
func (s stubComponent) Start(context.Context) error { return nil }
func (s stubComponent) Stop(context.Context) error  { return nil }
func (s stubComponent) Health(context.Context) component.Health {
	return component.Health{Name: s.name, Status: s.status}
}

func TestServiceHealth(t *testing.T) {
	tests := []struct {
		name     string
		statuses []component.HealthStatus
		want     component.HealthStatus
	}{
		{"empty", nil, component.StatusHealthy},
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, component.StatusHealthy},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, component.StatusDegraded},
		{"unhealthy wins", []component.HealthStatus{component.StatusUnhealthy, component.StatusDegraded}, component.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var components []component.Component
			for i, s := range tt.statuses {
				components = append(components, stubComponent{name: fmt.Sprintf("c%d", i), status: s})
			}
			sh := Check(context.Background(), "billing", "1.0.0", components...)
			if sh.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, sh.Status)
			}
			if len(sh.Components) != len(tt.statuses) || sh.Service != "billing" {
				t.Errorf("unexpected health %+v", sh)
			}
		})
	}
}

func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	for _, rate := range []float64{1.0, 0.5, 0} {
		cfg := DefaultConfig("test-service")
		cfg.SampleRate = rate
		tp, err := InitTracer(context.Background(), cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		shutdown(t, tp.Shutdown)
	}

	if _, err := InitTracer(context.Background(), Config{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestInitMeter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	cfg := DefaultConfig("test-service")
	cfg.Insecure = false
	mp, err := InitMeter(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shutdown(t, mp.Shutdown)
}

// shutdown bounds provider shutdown; nothing listens on the collector port.
func shutdown(t *testing.T, fn func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = fn(ctx)
}
