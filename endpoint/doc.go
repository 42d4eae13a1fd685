// Package endpoint executes REST calls against a base URL.
//
// An Endpoint resolves a resource path against its base URL, picks a
// serializer for the request body, dispatches through a transport, turns
// error statuses into typed errors and decodes successful responses into the
// requested shape. Serializer order is significant: the first serializer
// whose predicate matches is used on both sides.
//
//	ep, err := endpoint.New(endpoint.Config{
//	    Name:    "users",
//	    BaseURL: "https://api.example.com/v1",
//	})
//
//	user, err := endpoint.Get[User](ep, ctx, "/users/42")
//	users, err := ep.Get(ctx, "/users", serializer.SliceOf(serializer.TypeOf[User]()))
//
// Every call blocks until the transport returns. Endpoints are safe for
// concurrent use; commands and multipart requests are built per call.
package endpoint
