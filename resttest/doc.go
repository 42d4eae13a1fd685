// Package resttest provides a scripted HTTP server for testing REST clients.
//
// A Server records every request it receives and answers with queued
// responses, in order, or echoes the request body back. It is a
// testutil.TestComponent, so tests can start it with automatic cleanup:
//
//	srv := resttest.New(t)
//	srv.Enqueue(resttest.JSON(http.StatusOK, user))
//	// ... call srv.URL() ...
//	req, _ := srv.TakeRequest()
package resttest
