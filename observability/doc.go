// Package observability provides OpenTelemetry tracing and metrics for
// outgoing REST calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultConfig("billing"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanRESTCall)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultConfig("billing"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter("billing"))
//	metrics.RecordEnd(ctx, "users-api", "GET", observability.OutcomeOK, duration)
//
// Health:
//
//	health := observability.Check(ctx, "billing", version.Version, components...)
package observability
