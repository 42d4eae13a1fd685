package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestRestError_New_Retryable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeConnectionFailed, true},
		{ErrCodeTimeout, true},
		{ErrCodeServiceUnavailable, true},
		{ErrCodeHTTPServer, true},
		{ErrCodeHTTPClient, false},
		{ErrCodeSerialization, false},
		{ErrCodeNoSerializer, false},
		{ErrCodeURLConstruction, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").Retryable; got != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, got)
			}
		})
	}
}

func TestHTTPClient_CarriesResponseData(t *testing.T) {
	err := HTTPClient(404, "Not Found", []byte(`{"message":"no such item"}`))
	if err.Code != ErrCodeHTTPClient {
		t.Errorf("expected HTTP_CLIENT_ERROR, got %s", err.Code)
	}
	if err.StatusCode != 404 || err.StatusMessage != "Not Found" {
		t.Errorf("unexpected status: %d %q", err.StatusCode, err.StatusMessage)
	}
	if string(err.Content) != `{"message":"no such item"}` {
		t.Errorf("unexpected content: %s", err.Content)
	}
	if err.Retryable {
		t.Error("404 should not be retryable")
	}
	if !strings.Contains(err.Error(), "404 Not Found") {
		t.Errorf("expected status in message, got %q", err.Error())
	}
}

func TestHTTPClient_TooManyRequestsRetryable(t *testing.T) {
	if !HTTPClient(http.StatusTooManyRequests, "", nil).Retryable {
		t.Error("429 should be retryable")
	}
}

func TestHTTPServer_DefaultsStatusMessage(t *testing.T) {
	err := HTTPServer(503, "", nil)
	if err.StatusMessage != "Service Unavailable" {
		t.Errorf("expected standard reason phrase, got %q", err.StatusMessage)
	}
	if !err.Retryable {
		t.Error("5xx should be retryable")
	}
}

func TestNoSerializer_Sides(t *testing.T) {
	w := NoWriteSerializer("chan int")
	if w.Side() != SideWrite {
		t.Errorf("expected write side, got %q", w.Side())
	}
	r := NoReadSerializer("text/html")
	if r.Side() != SideRead {
		t.Errorf("expected read side, got %q", r.Side())
	}
	if !strings.Contains(NoReadSerializer("").Message, "no content type") {
		t.Errorf("expected missing content type message, got %q", NoReadSerializer("").Message)
	}
}

func TestHelpers_UnwrapChains(t *testing.T) {
	base := HTTPServer(500, "Internal Server Error", nil)
	wrapped := fmt.Errorf("calling users: %w", base)

	if !IsHTTPServerError(wrapped) {
		t.Error("expected IsHTTPServerError through wrapping")
	}
	if IsHTTPClientError(wrapped) {
		t.Error("did not expect IsHTTPClientError")
	}
	if !IsHTTPError(wrapped) {
		t.Error("expected IsHTTPError")
	}
	if StatusCode(wrapped) != 500 {
		t.Errorf("expected 500, got %d", StatusCode(wrapped))
	}
	if !IsRetryable(wrapped) {
		t.Error("expected retryable")
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("plain errors have no code")
	}
	if Is(nil, ErrCodeTimeout) {
		t.Error("nil is not a timeout")
	}
}

func TestRestError_UnwrapCause(t *testing.T) {
	err := TransportRead(io.ErrUnexpectedEOF)
	if !stderrors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected cause to be reachable with errors.Is")
	}
	if !IsTransportRead(err) {
		t.Error("expected TRANSPORT_READ")
	}
}

func TestInvalidStatus(t *testing.T) {
	err := InvalidStatus(700)
	if err.StatusCode != 700 || !IsInvalidStatus(err) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUnsupportedMethod(t *testing.T) {
	err := UnsupportedMethod("TRACE")
	if err.Details[DetailMethod] != "TRACE" {
		t.Errorf("expected method detail, got %v", err.Details)
	}
	if !strings.Contains(err.Error(), "'TRACE'") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRemoteError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"envelope", `{"error":{"code":"NOT_FOUND","message":"user not found"}}`, "user not found", true},
		{"problem", `{"type":"about:blank","title":"Bad Request","detail":"name is required"}`, "name is required", true},
		{"plain", `not json`, "", false},
		{"empty", ``, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ok := HTTPClient(400, "", []byte(tt.content)).RemoteError()
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && body.Message != tt.want {
				t.Errorf("expected %q, got %q", tt.want, body.Message)
			}
		})
	}
}
