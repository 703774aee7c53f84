package gateway

import (
	"sync/atomic"

	"github.com/cornelk/hashmap"
)

// BufferArena hands out integer handles for transfer buffers crossing
// the language boundary. Handles are linear capabilities: each one is
// valid for exactly one Release. Releasing an unknown or already
// released handle is detectable misuse and a no-op, never corruption.
//
// Handle 0 is never issued and stands for "no buffer".
type BufferArena struct {
	buffers  *hashmap.Map[uint64, []byte]
	next     atomic.Uint64
	allocs   atomic.Int64
	releases atomic.Int64
}

// NewBufferArena creates an empty arena.
func NewBufferArena() *BufferArena {
	return &BufferArena{
		buffers: hashmap.New[uint64, []byte](),
	}
}

// Register stores buf and returns its handle.
func (a *BufferArena) Register(buf []byte) uint64 {
	h := a.next.Add(1)
	a.buffers.Set(h, buf)
	a.allocs.Add(1)
	return h
}

// Bytes returns the buffer behind h without consuming the handle.
func (a *BufferArena) Bytes(h uint64) ([]byte, bool) {
	if h == 0 {
		return nil, false
	}
	return a.buffers.Get(h)
}

// Release consumes h. Releasing handle 0 is a no-op. Reports whether a
// live buffer was released.
func (a *BufferArena) Release(h uint64) bool {
	if h == 0 {
		return false
	}
	if _, ok := a.buffers.Get(h); !ok {
		return false
	}
	a.buffers.Del(h)
	a.releases.Add(1)
	return true
}

// Live returns the number of outstanding handles.
func (a *BufferArena) Live() int {
	return a.buffers.Len()
}

// Counters returns the total allocation and release counts, for leak
// accounting over scan/release cycles.
func (a *BufferArena) Counters() (allocated, released int64) {
	return a.allocs.Load(), a.releases.Load()
}
