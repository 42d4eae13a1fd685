package endpoint

import (
	"io"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/status"
	"github.com/kbukum/restkit/transport"
)

// ErrorHandler decides whether a response is a failure and converts it into
// an error.
type ErrorHandler interface {
	// HasError reports whether resp denotes a failed call.
	HasError(resp *transport.Response) bool
	// Handle converts a failed response into an error. It owns resp and must
	// release it.
	Handle(resp *transport.Response) error
}

// ErrorHooks replace the errors built for failed responses. A nil hook, or
// one returning nil, falls back to the built-in variant.
type ErrorHooks struct {
	ClientError  func(statusCode int, statusMessage string, content []byte) error
	ServerError  func(statusCode int, statusMessage string, content []byte) error
	DefaultError func(statusCode int, statusMessage string, content []byte) error
}

// DefaultErrorHandler treats 4xx and 5xx responses as failures.
type DefaultErrorHandler struct {
	hooks ErrorHooks
	log   *logger.Logger
}

var _ ErrorHandler = (*DefaultErrorHandler)(nil)

// NewErrorHandler creates the default handler with optional hooks.
func NewErrorHandler(hooks ErrorHooks, log *logger.Logger) *DefaultErrorHandler {
	if log == nil {
		log = logger.Get("endpoint")
	}
	return &DefaultErrorHandler{hooks: hooks, log: log}
}

// HasError is true for client and server error statuses. Codes outside every
// status class report false.
func (h *DefaultErrorHandler) HasError(resp *transport.Response) bool {
	t, err := status.Classify(resp.StatusCode)
	return err == nil && t.IsError()
}

// Handle reads the whole body, releases the response and returns the error
// matching the status class. A body read failure is returned as
// TRANSPORT_READ; a release failure is only logged.
func (h *DefaultErrorHandler) Handle(resp *transport.Response) error {
	if !h.HasError(resp) {
		return nil
	}

	content, readErr := io.ReadAll(resp.Body)
	if closeErr := resp.Close(); closeErr != nil {
		h.log.Warn("failed to release error response", map[string]any{
			logger.FieldStatus: resp.StatusCode,
			logger.FieldError:  closeErr.Error(),
		})
	}
	if readErr != nil {
		return errors.TransportRead(readErr).WithDetail("status_code", resp.StatusCode)
	}

	t, _ := status.Classify(resp.StatusCode)
	switch t {
	case status.ClientError:
		return h.build(h.hooks.ClientError, errors.HTTPClient, resp, content)
	case status.ServerError:
		return h.build(h.hooks.ServerError, errors.HTTPServer, resp, content)
	default:
		return h.build(h.hooks.DefaultError, errors.HTTPGeneric, resp, content)
	}
}

func (h *DefaultErrorHandler) build(
	hook func(int, string, []byte) error,
	builtin func(int, string, []byte) *errors.RestError,
	resp *transport.Response,
	content []byte,
) error {
	if hook != nil {
		if err := hook(resp.StatusCode, resp.Reason, content); err != nil {
			return err
		}
	}
	return builtin(resp.StatusCode, resp.Reason, content)
}
