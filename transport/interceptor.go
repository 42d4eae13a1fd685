package transport

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// Interceptor modifies an outgoing request before dispatch. Returning an
// error aborts the request.
type Interceptor func(req *http.Request) error

// RequestID sets an X-Request-Id header unless the request already has one.
func RequestID() Interceptor {
	return func(req *http.Request) error {
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, uuid.NewString())
		}
		return nil
	}
}

// TracePropagation injects the trace context of the request's context using
// the globally registered OpenTelemetry propagator.
func TracePropagation() Interceptor {
	return func(req *http.Request) error {
		otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
		return nil
	}
}

// StaticHeaders sets fixed headers unless the request already carries them.
func StaticHeaders(headers map[string]string) Interceptor {
	return func(req *http.Request) error {
		for k, v := range headers {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}
		return nil
	}
}
