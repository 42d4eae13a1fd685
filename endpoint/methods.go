package endpoint

import (
	"context"
	"fmt"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/serializer"
)

// Get performs a GET request and decodes the response into shape t.
func (e *Endpoint) Get(ctx context.Context, resource string, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.call(ctx, MethodGet, resource, nil, t, opts)
}

// Delete performs a DELETE request and decodes the response into shape t.
func (e *Endpoint) Delete(ctx context.Context, resource string, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.call(ctx, MethodDelete, resource, nil, t, opts)
}

// Post performs a POST request with body and decodes the response into shape t.
func (e *Endpoint) Post(ctx context.Context, resource string, body any, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.call(ctx, MethodPost, resource, body, t, opts)
}

// Put performs a PUT request with body and decodes the response into shape t.
func (e *Endpoint) Put(ctx context.Context, resource string, body any, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.call(ctx, MethodPut, resource, body, t, opts)
}

// Patch performs a PATCH request with body and decodes the response into shape t.
func (e *Endpoint) Patch(ctx context.Context, resource string, body any, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.call(ctx, MethodPatch, resource, body, t, opts)
}

// PostMultipart performs a POST request with a multipart/form-data body.
func (e *Endpoint) PostMultipart(ctx context.Context, resource string, parts *MultiPartRequest, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.callMultipart(ctx, MethodPost, resource, parts, t, opts)
}

// PutMultipart performs a PUT request with a multipart/form-data body.
func (e *Endpoint) PutMultipart(ctx context.Context, resource string, parts *MultiPartRequest, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.callMultipart(ctx, MethodPut, resource, parts, t, opts)
}

// PatchMultipart performs a PATCH request with a multipart/form-data body.
func (e *Endpoint) PatchMultipart(ctx context.Context, resource string, parts *MultiPartRequest, t serializer.Type, opts ...RequestOption) (any, error) {
	return e.callMultipart(ctx, MethodPatch, resource, parts, t, opts)
}

func (e *Endpoint) call(ctx context.Context, method, resource string, body any, t serializer.Type, opts []RequestOption) (any, error) {
	cmd, err := NewCommand(resource, method, body, t, opts...)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, cmd)
}

func (e *Endpoint) callMultipart(ctx context.Context, method, resource string, parts *MultiPartRequest, t serializer.Type, opts []RequestOption) (any, error) {
	cmd, err := NewMultipartCommand(resource, method, parts, t, opts...)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, cmd)
}

// --- Typed helpers ---

// Get performs a GET request and decodes the response into T.
func Get[T any](e *Endpoint, ctx context.Context, resource string, opts ...RequestOption) (T, error) {
	return as[T](e.Get(ctx, resource, serializer.TypeOf[T](), opts...))
}

// Delete performs a DELETE request and decodes the response into T.
func Delete[T any](e *Endpoint, ctx context.Context, resource string, opts ...RequestOption) (T, error) {
	return as[T](e.Delete(ctx, resource, serializer.TypeOf[T](), opts...))
}

// Post performs a POST request with body and decodes the response into T.
func Post[T any](e *Endpoint, ctx context.Context, resource string, body any, opts ...RequestOption) (T, error) {
	return as[T](e.Post(ctx, resource, body, serializer.TypeOf[T](), opts...))
}

// Put performs a PUT request with body and decodes the response into T.
func Put[T any](e *Endpoint, ctx context.Context, resource string, body any, opts ...RequestOption) (T, error) {
	return as[T](e.Put(ctx, resource, body, serializer.TypeOf[T](), opts...))
}

// Patch performs a PATCH request with body and decodes the response into T.
func Patch[T any](e *Endpoint, ctx context.Context, resource string, body any, opts ...RequestOption) (T, error) {
	return as[T](e.Patch(ctx, resource, body, serializer.TypeOf[T](), opts...))
}

// PostMultipart performs a multipart POST request and decodes the response into T.
func PostMultipart[T any](e *Endpoint, ctx context.Context, resource string, parts *MultiPartRequest, opts ...RequestOption) (T, error) {
	return as[T](e.PostMultipart(ctx, resource, parts, serializer.TypeOf[T](), opts...))
}

// PutMultipart performs a multipart PUT request and decodes the response into T.
func PutMultipart[T any](e *Endpoint, ctx context.Context, resource string, parts *MultiPartRequest, opts ...RequestOption) (T, error) {
	return as[T](e.PutMultipart(ctx, resource, parts, serializer.TypeOf[T](), opts...))
}

// PatchMultipart performs a multipart PATCH request and decodes the response into T.
func PatchMultipart[T any](e *Endpoint, ctx context.Context, resource string, parts *MultiPartRequest, opts ...RequestOption) (T, error) {
	return as[T](e.PatchMultipart(ctx, resource, parts, serializer.TypeOf[T](), opts...))
}

// ExecuteAs runs cmd and converts the result to T. The command's response
// type should describe T.
func ExecuteAs[T any](e *Endpoint, ctx context.Context, cmd *Command) (T, error) {
	return as[T](e.Execute(ctx, cmd))
}

// as converts an untyped result; nil becomes the zero T.
func as[T any](v any, err error) (T, error) {
	var zero T
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Serialization(fmt.Sprintf("unexpected result type '%T', want '%s'", v, serializer.TypeOf[T]()), nil)
	}
	return out, nil
}
