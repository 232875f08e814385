package lazyconn

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ id int64 }

func TestGetDialsOnceUnderConcurrentColdStart(t *testing.T) {
	var dialed atomic.Int64
	h := New("test", func(ctx context.Context) (*fakeConn, error) {
		n := dialed.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &fakeConn{id: n}, nil
	}, nil)

	var wg sync.WaitGroup
	conns := make([]*fakeConn, 20)
	for i := range conns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := h.Get(context.Background())
			assert.NoError(t, err)
			conns[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), dialed.Load())
	assert.Equal(t, int64(1), h.Dials())
	for _, c := range conns {
		assert.Same(t, conns[0], c)
	}
	assert.True(t, h.Connected())
}

func TestGetRetriesAfterFailedDial(t *testing.T) {
	attempts := 0
	h := New("test", func(ctx context.Context) (*fakeConn, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection refused")
		}
		return &fakeConn{id: 2}, nil
	}, nil)

	_, err := h.Get(context.Background())
	require.Error(t, err)
	assert.False(t, h.Connected())

	c, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.id)
	assert.Equal(t, 2, attempts)
}

func TestClose(t *testing.T) {
	var closed *fakeConn
	h := New("test", func(ctx context.Context) (*fakeConn, error) {
		return &fakeConn{id: 7}, nil
	}, func(ctx context.Context, c *fakeConn) error {
		closed = c
		return nil
	})

	c, err := h.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.Close(context.Background()))
	assert.Same(t, c, closed)

	_, err = h.Get(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseWithoutConnection(t *testing.T) {
	h := New("test", func(ctx context.Context) (*fakeConn, error) {
		t.Fatal("dial must not be called")
		return nil, nil
	}, nil)
	assert.NoError(t, h.Close(context.Background()))
}

func TestReady(t *testing.T) {
	conn := &fakeConn{id: 9}
	h := Ready("test", conn)

	got, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, conn, got)
	assert.Equal(t, int64(0), h.Dials())
	assert.Equal(t, "test", h.Name())
}
