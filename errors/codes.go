package errors

// ErrorCode represents a machine-readable error kind.
type ErrorCode string

// Request construction errors
const (
	// ErrCodeURLConstruction indicates the destination URL could not be built.
	ErrCodeURLConstruction ErrorCode = "URL_CONSTRUCTION"
	// ErrCodeInvalidCommand indicates a command was built with an illegal combination of arguments.
	ErrCodeInvalidCommand ErrorCode = "INVALID_COMMAND"
	// ErrCodeUnsupportedMethod indicates a command carries an HTTP method the executor cannot dispatch.
	ErrCodeUnsupportedMethod ErrorCode = "UNSUPPORTED_METHOD"
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Content negotiation errors
const (
	// ErrCodeNoSerializer indicates no configured serializer accepts the value or media type.
	ErrCodeNoSerializer ErrorCode = "NO_SERIALIZER"
	// ErrCodeSerialization indicates encoding or decoding a body failed.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"
)

// Transport errors (mostly retryable)
const (
	// ErrCodeTransportRead indicates the response body could not be read.
	ErrCodeTransportRead ErrorCode = "TRANSPORT_READ"
	// ErrCodeConnectionFailed indicates the request never reached the server.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request deadline passed or the call was cancelled.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeServiceUnavailable indicates a local guard (circuit breaker, rate limiter) refused the call.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Status errors
const (
	// ErrCodeHTTPClient indicates a 4xx response.
	ErrCodeHTTPClient ErrorCode = "HTTP_CLIENT_ERROR"
	// ErrCodeHTTPServer indicates a 5xx response.
	ErrCodeHTTPServer ErrorCode = "HTTP_SERVER_ERROR"
	// ErrCodeHTTPGeneric indicates an error status outside the client and server classes.
	ErrCodeHTTPGeneric ErrorCode = "HTTP_ERROR"
	// ErrCodeInvalidStatus indicates a status code outside every known class.
	ErrCodeInvalidStatus ErrorCode = "INVALID_STATUS"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeServiceUnavailable: true,
	ErrCodeHTTPServer:         true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
