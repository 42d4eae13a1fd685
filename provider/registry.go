package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry holds named provider instances.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	instances map[string]T
}

// NewRegistry creates a new empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{instances: make(map[string]T)}
}

// Register adds a provider under name. Names are unique.
func (r *Registry[T]) Register(name string, instance T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[name]; ok {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.instances[name] = instance
	return nil
}

// Get returns a provider by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// List returns the sorted names of all registered providers.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the providers ordered by name.
func (r *Registry[T]) All() []T {
	names := r.List()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(names))
	for _, name := range names {
		out = append(out, r.instances[name])
	}
	return out
}

// Close closes every Closeable provider and returns the first error.
func (r *Registry[T]) Close(ctx context.Context) error {
	return CloseAll(ctx, r.All()...)
}
