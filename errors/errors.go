package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Detail keys set by the constructors.
const (
	DetailSide        = "side"
	DetailValueType   = "value_type"
	DetailContentType = "content_type"
	DetailMethod      = "method"
	DetailURL         = "url"
)

// Sides of content negotiation reported by NoSerializer errors.
const (
	SideWrite = "write"
	SideRead  = "read"
)

// RestError is the single error type returned by the client.
type RestError struct {
	// Code is the machine-readable kind of the failure.
	Code ErrorCode `json:"code"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// StatusCode is the HTTP status (0 when no response was classified).
	StatusCode int `json:"status_code,omitempty"`
	// StatusMessage is the HTTP reason phrase.
	StatusMessage string `json:"status_message,omitempty"`
	// Content is the raw response body captured on the error path.
	Content []byte `json:"-"`
	// Retryable indicates if the call may succeed when repeated.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *RestError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d %s)", msg, e.StatusCode, e.StatusMessage)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *RestError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *RestError) WithCause(cause error) *RestError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *RestError) WithDetail(key string, value any) *RestError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Side reports which side of content negotiation failed for NO_SERIALIZER errors.
func (e *RestError) Side() string {
	s, _ := e.Details[DetailSide].(string)
	return s
}

// New creates a RestError with automatic retryable detection.
func New(code ErrorCode, message string) *RestError {
	return &RestError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// URLConstruction reports that base URL, path and query could not form a valid URL.
func URLConstruction(raw string, cause error) *RestError {
	return New(ErrCodeURLConstruction, "unable to build request URL").
		WithDetail(DetailURL, raw).WithCause(cause)
}

// InvalidCommand reports an illegal command combination, such as a GET with a body.
func InvalidCommand(message string) *RestError {
	return New(ErrCodeInvalidCommand, message)
}

// UnsupportedMethod reports a method the executor cannot dispatch.
func UnsupportedMethod(method string) *RestError {
	return New(ErrCodeUnsupportedMethod, fmt.Sprintf("method '%s' is unsupported", method)).
		WithDetail(DetailMethod, method)
}

// InvalidConfig reports a configuration validation failure.
func InvalidConfig(message string, cause error) *RestError {
	return New(ErrCodeInvalidConfig, message).WithCause(cause)
}

// NoWriteSerializer reports that no serializer accepts a value of the given type.
func NoWriteSerializer(valueType string) *RestError {
	return New(ErrCodeNoSerializer, fmt.Sprintf("unable to find serializer for type '%s'", valueType)).
		WithDetail(DetailSide, SideWrite).
		WithDetail(DetailValueType, valueType)
}

// NoReadSerializer reports that no serializer reads the given media type.
func NoReadSerializer(contentType string) *RestError {
	msg := fmt.Sprintf("unable to find serializer for media type '%s'", contentType)
	if contentType == "" {
		msg = "response carries no content type"
	}
	return New(ErrCodeNoSerializer, msg).
		WithDetail(DetailSide, SideRead).
		WithDetail(DetailContentType, contentType)
}

// Serialization reports an encode or decode failure.
func Serialization(message string, cause error) *RestError {
	return New(ErrCodeSerialization, message).WithCause(cause)
}

// TransportRead reports a failure reading the response body.
func TransportRead(cause error) *RestError {
	return New(ErrCodeTransportRead, "unable to read response body").WithCause(cause)
}

// ConnectionFailed reports that the request could not be delivered.
func ConnectionFailed(cause error) *RestError {
	return New(ErrCodeConnectionFailed, "unable to execute request").WithCause(cause)
}

// Timeout reports a deadline or cancellation during the call.
func Timeout(cause error) *RestError {
	return New(ErrCodeTimeout, "request timed out").WithCause(cause)
}

// ServiceUnavailable reports a call refused locally by a resilience guard.
func ServiceUnavailable(reason string, cause error) *RestError {
	return New(ErrCodeServiceUnavailable, reason).WithCause(cause)
}

// InvalidStatus reports a status code outside every known class.
func InvalidStatus(statusCode int) *RestError {
	return &RestError{
		Code:       ErrCodeInvalidStatus,
		Message:    fmt.Sprintf("no matching status class for code %d", statusCode),
		StatusCode: statusCode,
	}
}

// HTTPClient creates the 4xx variant carrying the response data.
func HTTPClient(statusCode int, statusMessage string, content []byte) *RestError {
	return httpError(ErrCodeHTTPClient, statusCode, statusMessage, content)
}

// HTTPServer creates the 5xx variant carrying the response data.
func HTTPServer(statusCode int, statusMessage string, content []byte) *RestError {
	return httpError(ErrCodeHTTPServer, statusCode, statusMessage, content)
}

// HTTPGeneric creates the variant for error statuses outside 4xx and 5xx.
func HTTPGeneric(statusCode int, statusMessage string, content []byte) *RestError {
	return httpError(ErrCodeHTTPGeneric, statusCode, statusMessage, content)
}

func httpError(code ErrorCode, statusCode int, statusMessage string, content []byte) *RestError {
	if statusMessage == "" {
		statusMessage = http.StatusText(statusCode)
	}
	return &RestError{
		Code:          code,
		Message:       "rest call failed",
		StatusCode:    statusCode,
		StatusMessage: statusMessage,
		Content:       content,
		Retryable:     IsRetryableCode(code) || statusCode == http.StatusTooManyRequests,
	}
}

// --- Inspection helpers ---

// AsRestError extracts a RestError from an error chain.
func AsRestError(err error) (*RestError, bool) {
	var re *RestError
	if stderrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// CodeOf returns the kind of err, or "" when err is not a RestError.
func CodeOf(err error) ErrorCode {
	if re, ok := AsRestError(err); ok {
		return re.Code
	}
	return ""
}

// Is reports whether err is a RestError of the given kind.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsHTTPError reports whether err is any of the HTTP status variants.
func IsHTTPError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeHTTPClient, ErrCodeHTTPServer, ErrCodeHTTPGeneric:
		return true
	}
	return false
}

// IsHTTPClientError reports whether err is the 4xx variant.
func IsHTTPClientError(err error) bool { return Is(err, ErrCodeHTTPClient) }

// IsHTTPServerError reports whether err is the 5xx variant.
func IsHTTPServerError(err error) bool { return Is(err, ErrCodeHTTPServer) }

// IsNoSerializer reports whether content negotiation failed.
func IsNoSerializer(err error) bool { return Is(err, ErrCodeNoSerializer) }

// IsSerialization reports whether encoding or decoding failed.
func IsSerialization(err error) bool { return Is(err, ErrCodeSerialization) }

// IsURLConstruction reports whether the URL could not be built.
func IsURLConstruction(err error) bool { return Is(err, ErrCodeURLConstruction) }

// IsTransportRead reports whether reading the body failed.
func IsTransportRead(err error) bool { return Is(err, ErrCodeTransportRead) }

// IsInvalidStatus reports whether the status code matched no class.
func IsInvalidStatus(err error) bool { return Is(err, ErrCodeInvalidStatus) }

// IsTimeout reports whether the call timed out.
func IsTimeout(err error) bool { return Is(err, ErrCodeTimeout) }

// IsConnection reports whether the request could not be delivered.
func IsConnection(err error) bool { return Is(err, ErrCodeConnectionFailed) }

// IsRetryable reports whether err is a RestError marked retryable.
func IsRetryable(err error) bool {
	re, ok := AsRestError(err)
	return ok && re.Retryable
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if re, ok := AsRestError(err); ok {
		return re.StatusCode
	}
	return 0
}
