// Package serializer converts request and response bodies between Go values
// and bytes.
//
// A Serializer advertises what it can write (by inspecting the value) and
// what it can read (by media type). Endpoints hold serializers in an ordered
// Registry; the first serializer whose predicate matches is used, so order
// is significant:
//
//	reg := serializer.NewRegistry(serializer.NewString(), serializer.NewJSON(), serializer.NewBytes())
//
// Target shapes for deserialization are described with Type values
// (TypeOf[T], SliceOf, MapOf) so collection results can be requested without
// naming a concrete Go type at the call site.
package serializer

import (
	"fmt"
	"io"
	"reflect"

	"github.com/kbukum/restkit/errors"
)

// Serializer encodes values into request bodies and decodes response bodies.
// Implementations must be stateless and safe for concurrent use.
type Serializer interface {
	// Serialize encodes v. Fails with SERIALIZATION if v cannot be encoded.
	Serialize(v any) (io.Reader, error)
	// Deserialize decodes data into a value of shape t. Fails with
	// SERIALIZATION if data does not parse into that shape.
	Deserialize(data []byte, t Type) (any, error)
	// MimeType is the content type attached to serialized bodies.
	MimeType() string
	// CanRead reports whether bodies of the given media type can be decoded.
	CanRead(mimeType string) bool
	// CanWrite reports whether v can be encoded.
	CanWrite(v any) bool
}

// encodable reports whether a structured encoder can represent v.
func encodable(v any) bool {
	if v == nil {
		return false
	}
	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	switch rt.Kind() {
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return false
	}
	return true
}

// newTarget allocates a pointer to a zero value of shape t.
func newTarget(t Type) (reflect.Value, error) {
	rt := t.Reflect()
	if rt == nil {
		return reflect.Value{}, errors.Serialization(fmt.Sprintf("no valid target type in '%s'", t), nil)
	}
	return reflect.New(rt), nil
}

const maxContentInMessage = 256

func deserializeError(data []byte, t Type, cause error) error {
	content := string(data)
	if len(content) > maxContentInMessage {
		content = content[:maxContentInMessage] + "..."
	}
	return errors.Serialization(fmt.Sprintf("unable to deserialize content '%s' to type '%s'", content, t), cause)
}

func serializeError(v any, cause error) error {
	return errors.Serialization(fmt.Sprintf("unable to serialize value of type '%T'", v), cause)
}
