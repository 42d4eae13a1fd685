package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent   = "component"
	FieldEndpoint    = "endpoint"
	FieldMethod      = "method"
	FieldURL         = "url"
	FieldStatus      = "status"
	FieldContentType = "content_type"
	FieldRequestID   = "request_id"
	FieldTraceID     = "trace_id"
	FieldError       = "error"
	FieldErrorCode   = "error_code"
	FieldDuration    = "duration_ms"
)

// Fields builds a map from alternating key-value pairs.
//
//	log.Info("done", logger.Fields("method", "GET", "status", 200))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{
		"operation": op,
		FieldError:  err.Error(),
	}
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]any, d time.Duration) map[string]any {
	if fields == nil {
		fields = make(map[string]any)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
