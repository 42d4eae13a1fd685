package testutil

import (
	"context"

	"github.com/kbukum/restkit/component"
)

// TestComponent is a component with test-only state management. Test servers
// and fakes implement it so suites can isolate cases without restarting them.
type TestComponent interface {
	component.Component

	// Reset returns the component to its freshly started state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore returns to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot any) error
}
