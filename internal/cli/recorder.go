package cli

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/restkit/provider"
	"github.com/kbukum/restkit/transport"
)

// recorder remembers the status line of the last response it dispatched.
type recorder struct {
	inner transport.Transport

	mu   sync.Mutex
	last exchange
}

func (r *recorder) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	start := time.Now()
	resp, err := r.inner.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.last = exchange{
		StatusCode: resp.StatusCode,
		Reason:     resp.Reason,
		Header:     resp.Header.Clone(),
		Duration:   time.Since(start),
	}
	r.mu.Unlock()
	return resp, nil
}

func (r *recorder) IsAvailable(ctx context.Context) bool {
	if a, ok := r.inner.(interface{ IsAvailable(context.Context) bool }); ok {
		return a.IsAvailable(ctx)
	}
	return true
}

func (r *recorder) Close(ctx context.Context) error {
	if c, ok := r.inner.(provider.Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}

func (r *recorder) Last() exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
