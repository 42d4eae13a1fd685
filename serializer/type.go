package serializer

import (
	"reflect"
)

// Kind distinguishes the shapes a Type can describe.
type Kind int

const (
	// KindNone is the zero Type: no result is expected.
	KindNone Kind = iota
	// KindSimple is a single Go type.
	KindSimple
	// KindSlice is an ordered collection of an element type.
	KindSlice
	// KindMap is a map from a key type to an element type.
	KindMap
)

// Type describes the shape a response body is decoded into.
type Type struct {
	kind Kind
	rt   reflect.Type
	key  *Type
	elem *Type
}

// TypeOf describes the Go type T.
func TypeOf[T any]() Type {
	return Simple(reflect.TypeFor[T]())
}

// Simple describes an existing reflect.Type. A nil type yields the zero Type.
func Simple(rt reflect.Type) Type {
	if rt == nil {
		return Type{}
	}
	return Type{kind: KindSimple, rt: rt}
}

// SliceOf describes a collection of elem.
func SliceOf(elem Type) Type {
	return Type{kind: KindSlice, elem: &elem}
}

// MapOf describes a map from key to elem.
func MapOf(key, elem Type) Type {
	return Type{kind: KindMap, key: &key, elem: &elem}
}

// Kind returns the shape of t.
func (t Type) Kind() Kind { return t.kind }

// IsZero reports whether t describes nothing.
func (t Type) IsZero() bool { return t.kind == KindNone }

// Elem returns the element description of a slice or map Type.
func (t Type) Elem() Type {
	if t.elem == nil {
		return Type{}
	}
	return *t.elem
}

// Key returns the key description of a map Type.
func (t Type) Key() Type {
	if t.key == nil {
		return Type{}
	}
	return *t.key
}

// Reflect resolves t to a concrete reflect.Type. It returns nil for the zero
// Type and for shapes Go cannot express, such as maps with non-comparable keys.
func (t Type) Reflect() reflect.Type {
	switch t.kind {
	case KindSimple:
		return t.rt
	case KindSlice:
		elem := t.Elem().Reflect()
		if elem == nil {
			return nil
		}
		return reflect.SliceOf(elem)
	case KindMap:
		key, elem := t.Key().Reflect(), t.Elem().Reflect()
		if key == nil || elem == nil || !key.Comparable() {
			return nil
		}
		return reflect.MapOf(key, elem)
	}
	return nil
}

// String returns the Go spelling of the described type.
func (t Type) String() string {
	switch t.kind {
	case KindSimple:
		return t.rt.String()
	case KindSlice:
		return "[]" + t.Elem().String()
	case KindMap:
		return "map[" + t.Key().String() + "]" + t.Elem().String()
	}
	return "<none>"
}
