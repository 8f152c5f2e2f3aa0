// Package storage holds the persistence adapters and the helpers they share.
//
// Backends live in subpackages: sqlite for the local single-binary setup,
// mongo for the hosted deployment and memory for tests.
package storage

import (
	"context"
	"sync"
)

// Lazy is a process-wide resource created on first use, such as a
// database client. At most one initialisation runs at a time; a failed
// initialisation is not cached, so the next Get retries.
type Lazy[T any] struct {
	mu      sync.Mutex
	open    func(ctx context.Context) (T, error)
	release func(ctx context.Context, v T) error
	value   T
	ready   bool
}

// NewLazy returns a Lazy that creates its value with open and tears it
// down with release. release may be nil.
func NewLazy[T any](open func(ctx context.Context) (T, error), release func(ctx context.Context, v T) error) *Lazy[T] {
	return &Lazy[T]{open: open, release: release}
}

// Get returns the cached value, creating it if needed.
// Concurrent callers wait for the in-flight initialisation.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.value, nil
	}

	v, err := l.open(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.ready = true
	return v, nil
}

// Ready reports whether a value is cached.
func (l *Lazy[T]) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Close releases the cached value, if any. A later Get creates a new one.
func (l *Lazy[T]) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.ready {
		return nil
	}
	v := l.value
	var zero T
	l.value = zero
	l.ready = false

	if l.release == nil {
		return nil
	}
	return l.release(ctx, v)
}
