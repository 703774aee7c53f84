// Package ring provides a bounded channel with overwrite-oldest
// semantics. The scanner publishes live device events through it so that
// a slow or absent consumer can never block a backend callback thread.
package ring

import "sync/atomic"

// Channel wraps a buffered Go channel and guarantees that producers
// never block: when the buffer is full the oldest element is dropped.
//
// Writers use ForceSend or TrySend. Readers range over C() like a normal
// channel, or use Receive for counted reads.
type Channel[T any] struct {
	ch      chan T
	metrics Metrics
}

// New creates a Channel with the given capacity.
func New[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		panic("ring: capacity must be > 0")
	}
	return &Channel[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel. Consumers can range
// over it until Close.
func (c *Channel[T]) C() <-chan T {
	return c.ch
}

// ForceSend inserts v, dropping the oldest buffered element if the
// channel is full. It never blocks. Reports whether an element was
// dropped.
func (c *Channel[T]) ForceSend(v T) bool {
	dropped := false
	select {
	case c.ch <- v:
	default:
		select {
		case <-c.ch:
			c.metrics.addDropped(1)
			dropped = true
		default:
		}
		c.ch <- v
	}
	c.metrics.addWritten(1)
	return dropped
}

// TrySend inserts v without blocking. Returns false if the buffer is
// full.
func (c *Channel[T]) TrySend(v T) bool {
	select {
	case c.ch <- v:
		c.metrics.addWritten(1)
		return true
	default:
		return false
	}
}

// Receive blocks until a value is available or the channel is closed.
func (c *Channel[T]) Receive() (v T, ok bool) {
	v, ok = <-c.ch
	if ok {
		c.metrics.addRead(1)
	}
	return
}

// Len returns the number of buffered elements.
func (c *Channel[T]) Len() int { return len(c.ch) }

// Cap returns the channel capacity.
func (c *Channel[T]) Cap() int { return cap(c.ch) }

// Close closes the underlying channel. After Close, sends panic.
func (c *Channel[T]) Close() { close(c.ch) }

// GetMetrics returns a snapshot of the counters.
func (c *Channel[T]) GetMetrics() Metrics {
	return Metrics{
		Written: atomic.LoadInt64(&c.metrics.Written),
		Read:    atomic.LoadInt64(&c.metrics.Read),
		Dropped: atomic.LoadInt64(&c.metrics.Dropped),
	}
}

// Metrics tracks channel activity with atomic counters.
type Metrics struct {
	Written int64
	Read    int64
	Dropped int64
}

func (m *Metrics) addWritten(n int) { atomic.AddInt64(&m.Written, int64(n)) }
func (m *Metrics) addRead(n int)    { atomic.AddInt64(&m.Read, int64(n)) }
func (m *Metrics) addDropped(n int) { atomic.AddInt64(&m.Dropped, int64(n)) }
