package errors

import (
	"encoding/json"
)

// ErrorResponse is the error envelope returned by services that follow
// RFC 7807-style structured errors ({"error": {...}}).
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody holds the remote error details.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// DecodeContent unmarshals the captured response body as JSON into v.
func (e *RestError) DecodeContent(v any) error {
	if len(e.Content) == 0 {
		return Serialization("error response has no content", nil)
	}
	if err := json.Unmarshal(e.Content, v); err != nil {
		return Serialization("unable to decode error content", err)
	}
	return nil
}

// RemoteError extracts the remote error body from the captured content.
// Both the {"error": {...}} envelope and RFC 7807 problem documents are recognised.
func (e *RestError) RemoteError() (*ErrorBody, bool) {
	var env ErrorResponse
	if err := e.DecodeContent(&env); err == nil && (env.Error.Code != "" || env.Error.Message != "") {
		return &env.Error, true
	}
	var p Problem
	if err := e.DecodeContent(&p); err == nil && (p.Title != "" || p.Detail != "") {
		msg := p.Detail
		if msg == "" {
			msg = p.Title
		}
		return &ErrorBody{Code: p.Type, Message: msg}, true
	}
	return nil, false
}
