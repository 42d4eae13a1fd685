package serializer

import (
	"fmt"
	"slices"

	"github.com/kbukum/restkit/errors"
)

// Registry is an immutable ordered list of serializers.
type Registry struct {
	serializers []Serializer
}

// NewRegistry creates a registry consulting serializers in the given order.
func NewRegistry(serializers ...Serializer) *Registry {
	return &Registry{serializers: slices.Clone(serializers)}
}

// Defaults returns the serializers used when an endpoint is given none:
// raw bytes, then JSON. Bytes only claims byte slices, so it goes first.
func Defaults() []Serializer {
	return []Serializer{NewBytes(), NewJSON()}
}

// ForWrite returns the first serializer that can write v.
func (r *Registry) ForWrite(v any) (Serializer, error) {
	for _, s := range r.serializers {
		if s.CanWrite(v) {
			return s, nil
		}
	}
	return nil, errors.NoWriteSerializer(fmt.Sprintf("%T", v))
}

// ForRead returns the first serializer that can read contentType. An empty
// content type never matches.
func (r *Registry) ForRead(contentType string) (Serializer, error) {
	if contentType != "" {
		for _, s := range r.serializers {
			if s.CanRead(contentType) {
				return s, nil
			}
		}
	}
	return nil, errors.NoReadSerializer(contentType)
}

// Serializers returns a copy of the configured serializers in order.
func (r *Registry) Serializers() []Serializer {
	return slices.Clone(r.serializers)
}

// Len returns the number of configured serializers.
func (r *Registry) Len() int { return len(r.serializers) }
