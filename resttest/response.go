package resttest

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response is a scripted reply.
type Response struct {
	// Status defaults to 200.
	Status int
	// Header is sent as-is.
	Header map[string]string
	// ContentType is sent unless empty; an empty value sends no
	// Content-Type header at all.
	ContentType string
	// Body is the entity.
	Body []byte
	// Delay holds the reply back, or until the client gives up.
	Delay time.Duration
}

// Status creates an empty reply with the given status.
func Status(status int) Response {
	return Response{Status: status}
}

// JSON creates a reply with v encoded as JSON.
func JSON(status int, v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("resttest: encode %T: %v", v, err))
	}
	return Response{Status: status, ContentType: "application/json", Body: b}
}

// Raw creates a reply with an explicit content type and body.
func Raw(status int, contentType string, body []byte) Response {
	return Response{Status: status, ContentType: contentType, Body: body}
}

// Text creates a text/plain reply.
func Text(status int, body string) Response {
	return Raw(status, "text/plain; charset=utf-8", []byte(body))
}

// WithHeader returns a copy of r with an extra header.
func (r Response) WithHeader(key, value string) Response {
	h := make(map[string]string, len(r.Header)+1)
	for k, v := range r.Header {
		h[k] = v
	}
	h[key] = value
	r.Header = h
	return r
}

// WithDelay returns a copy of r that is held back for d.
func (r Response) WithDelay(d time.Duration) Response {
	r.Delay = d
	return r
}
