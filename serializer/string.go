package serializer

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/kbukum/restkit/errors"
)

var stringType = reflect.TypeFor[string]()

// String passes pre-encoded text through unchanged. It declares
// application/json by default so already-serialized JSON documents can be
// sent and received verbatim; use NewStringFor for other media types.
//
// Both directions accept only string-shaped types: values and targets of
// kind string, or interface targets a string satisfies.
type String struct {
	mimeType string
}

// NewString creates a String serializer declaring MimeTypeJSON.
func NewString() *String { return NewStringFor(MimeTypeJSON) }

// NewStringFor creates a String serializer declaring mimeType, e.g. "text/plain".
func NewStringFor(mimeType string) *String { return &String{mimeType: mimeType} }

func (s *String) MimeType() string { return s.mimeType }

func (s *String) CanRead(mimeType string) bool {
	return MatchMediaType(s.mimeType, mimeType)
}

func (s *String) CanWrite(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.String
}

func (s *String) Serialize(v any) (io.Reader, error) {
	if !s.CanWrite(v) {
		return nil, serializeError(v, fmt.Errorf("expected a string"))
	}
	return strings.NewReader(reflect.ValueOf(v).String()), nil
}

func (s *String) Deserialize(data []byte, t Type) (any, error) {
	rt := t.Reflect()
	switch {
	case rt == nil:
	case rt.Kind() == reflect.String:
		rv := reflect.New(rt).Elem()
		rv.SetString(string(data))
		return rv.Interface(), nil
	case rt.Kind() == reflect.Interface && stringType.Implements(rt):
		return string(data), nil
	}
	return nil, errors.Serialization(fmt.Sprintf("unable to deserialize text content to type '%s'", t), nil)
}
