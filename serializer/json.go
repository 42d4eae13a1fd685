package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kbukum/restkit/errors"
)

// MimeTypeJSON is the content type written by the JSON serializer.
const MimeTypeJSON = "application/json; charset=utf-8"

// JSON encodes values with encoding/json. It reads application/json and
// structured-suffix types such as application/problem+json.
type JSON struct {
	envelope string
	strict   bool
}

// JSONOption configures the JSON serializer.
type JSONOption func(*JSON)

// WithEnvelope decodes only the sub-document at the given gjson path, for
// APIs that wrap payloads, e.g. "data" for {"data": {...}}.
func WithEnvelope(path string) JSONOption {
	return func(s *JSON) { s.envelope = path }
}

// WithDisallowUnknownFields rejects objects carrying fields the target
// struct does not declare.
func WithDisallowUnknownFields() JSONOption {
	return func(s *JSON) { s.strict = true }
}

// NewJSON creates a JSON serializer.
func NewJSON(opts ...JSONOption) *JSON {
	s := &JSON{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *JSON) MimeType() string { return MimeTypeJSON }

func (s *JSON) CanRead(mimeType string) bool {
	mt := BaseMediaType(mimeType)
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func (s *JSON) CanWrite(v any) bool { return encodable(v) }

func (s *JSON) Serialize(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, serializeError(v, err)
	}
	return bytes.NewReader(b), nil
}

func (s *JSON) Deserialize(data []byte, t Type) (any, error) {
	target, err := newTarget(t)
	if err != nil {
		return nil, err
	}

	if s.envelope != "" {
		if !gjson.ValidBytes(data) {
			return nil, deserializeError(data, t, nil)
		}
		r := gjson.GetBytes(data, s.envelope)
		if !r.Exists() {
			return nil, errors.Serialization(fmt.Sprintf("envelope path '%s' not found in response", s.envelope), nil)
		}
		data = []byte(r.Raw)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if s.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(target.Interface()); err != nil {
		return nil, deserializeError(data, t, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, deserializeError(data, t, fmt.Errorf("unexpected data after top-level value"))
	}
	return target.Elem().Interface(), nil
}
