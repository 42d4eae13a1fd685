package provider

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/restkit/errors"
)

// Selector picks the index of the provider to call from an ordered list of
// candidates.
type Selector[T Provider] interface {
	Select(ctx context.Context, candidates []T) (int, error)
}

// PrioritySelector returns the first available candidate.
type PrioritySelector[T Provider] struct{}

// Select returns the first available candidate in order.
func (s *PrioritySelector[T]) Select(ctx context.Context, candidates []T) (int, error) {
	for i, p := range candidates {
		if p.IsAvailable(ctx) {
			return i, nil
		}
	}
	return -1, errNoneAvailable()
}

// RoundRobinSelector distributes calls across candidates, skipping those
// that are unavailable.
type RoundRobinSelector[T Provider] struct {
	counter atomic.Uint64
}

// Select picks the next available candidate.
func (s *RoundRobinSelector[T]) Select(ctx context.Context, candidates []T) (int, error) {
	n := len(candidates)
	if n == 0 {
		return -1, errNoneAvailable()
	}
	start := int(s.counter.Add(1)-1) % n
	for i := range n {
		idx := (start + i) % n
		if candidates[idx].IsAvailable(ctx) {
			return idx, nil
		}
	}
	return -1, errNoneAvailable()
}

func errNoneAvailable() error {
	return errors.ServiceUnavailable("no available provider", nil)
}
