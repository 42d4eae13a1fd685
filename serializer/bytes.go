package serializer

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/kbukum/restkit/errors"
)

// MimeTypeOctetStream is the content type written by the Bytes serializer.
const MimeTypeOctetStream = "application/octet-stream"

var byteSliceType = reflect.TypeFor[[]byte]()

// Bytes passes raw byte slices through unchanged.
type Bytes struct {
	readable []string
}

// NewBytes creates a Bytes serializer reading the given media type patterns
// ("image/*", "*/*", ...). With no patterns it reads application/octet-stream.
func NewBytes(readable ...string) *Bytes {
	if len(readable) == 0 {
		readable = []string{MimeTypeOctetStream}
	}
	return &Bytes{readable: readable}
}

func (s *Bytes) MimeType() string { return MimeTypeOctetStream }

func (s *Bytes) CanRead(mimeType string) bool {
	for _, p := range s.readable {
		if MatchMediaType(p, mimeType) {
			return true
		}
	}
	return false
}

func (s *Bytes) CanWrite(v any) bool {
	return v != nil && isByteSlice(reflect.TypeOf(v))
}

func (s *Bytes) Serialize(v any) (io.Reader, error) {
	if !s.CanWrite(v) {
		return nil, serializeError(v, fmt.Errorf("expected a byte slice"))
	}
	return bytes.NewReader(reflect.ValueOf(v).Bytes()), nil
}

func (s *Bytes) Deserialize(data []byte, t Type) (any, error) {
	rt := t.Reflect()
	switch {
	case rt == nil:
	case isByteSlice(rt):
		rv := reflect.New(rt).Elem()
		rv.SetBytes(bytes.Clone(data))
		return rv.Interface(), nil
	case rt.Kind() == reflect.Interface && byteSliceType.Implements(rt):
		return bytes.Clone(data), nil
	}
	return nil, errors.Serialization(fmt.Sprintf("unable to deserialize raw content to type '%s'", t), nil)
}

func isByteSlice(rt reflect.Type) bool {
	return rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8
}
