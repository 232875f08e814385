// Package lazyconn owns a single store connection that is established on
// first use. Concurrent cold-start callers share one dial; a failed dial is
// not remembered, so the next caller tries again.
package lazyconn

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("lazyconn: handle closed")

// DialFunc establishes the underlying connection or pool.
type DialFunc[T any] func(ctx context.Context) (T, error)

// CloseFunc releases a connection returned by DialFunc.
type CloseFunc[T any] func(ctx context.Context, conn T) error

// Handle hands out a shared connection value. The zero value is not usable;
// create one with New.
type Handle[T any] struct {
	name  string
	dial  DialFunc[T]
	close CloseFunc[T]

	mu     sync.Mutex
	conn   T
	ready  atomic.Bool
	closed bool
	dials  atomic.Int64
}

// New returns a handle that dials with dial on first Get. closeFn may be nil.
func New[T any](name string, dial DialFunc[T], closeFn CloseFunc[T]) *Handle[T] {
	return &Handle[T]{name: name, dial: dial, close: closeFn}
}

// Ready wraps an already-established connection, e.g. a test double.
func Ready[T any](name string, conn T) *Handle[T] {
	h := &Handle[T]{name: name, conn: conn}
	h.ready.Store(true)
	return h
}

// Name identifies the handle in logs.
func (h *Handle[T]) Name() string { return h.name }

// Get returns the connection, dialing it if no connection exists yet.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	if h.ready.Load() {
		return h.conn, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if h.closed {
		return zero, ErrClosed
	}
	if h.ready.Load() {
		return h.conn, nil
	}

	h.dials.Add(1)
	conn, err := h.dial(ctx)
	if err != nil {
		return zero, err
	}
	h.conn = conn
	h.ready.Store(true)
	return conn, nil
}

// Connected reports whether a live connection is held.
func (h *Handle[T]) Connected() bool { return h.ready.Load() }

// Dials returns how many dial attempts were made. Exposed for tests and logs.
func (h *Handle[T]) Dials() int64 { return h.dials.Load() }

// Close releases the connection if one was established. Later Get calls
// fail with ErrClosed.
func (h *Handle[T]) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if !h.ready.Load() {
		return nil
	}
	h.ready.Store(false)
	if h.close == nil {
		return nil
	}
	return h.close(ctx, h.conn)
}
