// Package pool holds reusable render buffers and a bounded history ring.
package pool

import (
	"bytes"
	"sync"
)

// maxPooledBuffer is the largest buffer returned to the pool. A full page
// render fits comfortably below it.
const maxPooledBuffer = 256 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool. Oversized buffers are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}

// Ring is a fixed-size circular buffer that keeps the most recent items.
type Ring[T any] struct {
	data  []T
	head  int
	count int
	mu    sync.Mutex
}

// NewRing creates a ring holding at most capacity items. A capacity below
// one is raised to one.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Push adds an item, overwriting the oldest when full.
func (r *Ring[T]) Push(item T) (overwritten bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := len(r.data)
	tail := (r.head + r.count) % size
	r.data[tail] = item
	if r.count == size {
		r.head = (r.head + 1) % size
		return true
	}
	r.count++
	return false
}

// Len returns the number of items held.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Snapshot returns the items oldest first without clearing the ring.
func (r *Ring[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(r.head+i)%len(r.data)]
	}
	return out
}
