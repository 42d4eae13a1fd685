// Package testutil adds test-only lifecycle methods to components.
//
// A TestComponent can be reset between cases and snapshotted, so one started
// instance serves a whole suite:
//
//	func TestUsers(t *testing.T) {
//	    srv := resttest.NewServer()
//	    testutil.T(t).Setup(srv) // stopped when the test ends
//	    ...
//	    testutil.T(t).Reset(srv)
//	}
package testutil
