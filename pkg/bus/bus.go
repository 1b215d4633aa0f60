// Package bus provides the ordered event channel between source adapters
// and the coordinator.
//
// Many producers, one consumer. Delivery is FIFO by arrival across the
// merged stream; per-source order is whatever order that source published
// in. Capacity is bounded per event class: when a class is full the oldest
// pending event of that class is evicted, so a slow consumer degrades to
// "most recent reading per class" instead of unbounded memory or a stalled
// adapter. Evictions are counted and observable.
package bus

import (
	"context"
	"errors"
	"sync"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// ErrClosed is returned by Publish and Next once the bus has been closed
// and drained.
var ErrClosed = errors.New("bus: closed")

// DefaultCapacity is the per-class queue depth used when the configured
// value is missing or non-positive.
const DefaultCapacity = 64

// Bus is a bounded many-producer single-consumer event queue.
type Bus struct {
	mu       sync.Mutex
	queue    []event.Event
	pending  map[string]int    // events in queue, per class
	drops    map[string]uint64 // evictions, per class
	capacity int
	closed   bool

	notify chan struct{} // wakeup token for the consumer, cap 1
	done   chan struct{} // closed by Close
}

// New returns a bus holding at most capacity pending events per class.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		pending:  make(map[string]int),
		drops:    make(map[string]uint64),
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Publish appends ev to the queue. It never blocks: if ev's class is at
// capacity the oldest pending event of that class is evicted first and the
// class drop counter incremented. Publish fails only after Close.
func (b *Bus) Publish(ev event.Event) error {
	class := ev.Class()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if b.pending[class] >= b.capacity {
		b.evictOldestLocked(class)
	}
	b.queue = append(b.queue, ev)
	b.pending[class]++
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// evictOldestLocked removes the first queued event whose class matches.
func (b *Bus) evictOldestLocked(class string) {
	for i, queued := range b.queue {
		if queued.Class() != class {
			continue
		}
		b.queue = append(b.queue[:i], b.queue[i+1:]...)
		b.pending[class]--
		b.drops[class]++
		return
	}
}

// Next returns the oldest pending event, blocking until one is published,
// ctx is cancelled, or the bus is closed. After Close, remaining events are
// still drained in order before ErrClosed is reported.
func (b *Bus) Next(ctx context.Context) (event.Event, error) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			ev := b.queue[0]
			b.queue = b.queue[1:]
			b.pending[ev.Class()]--
			b.mu.Unlock()
			return ev, nil
		}
		closed := b.closed
		b.mu.Unlock()

		if closed {
			return nil, ErrClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.done:
			// Re-check: events may have been published before Close.
		case <-b.notify:
		}
	}
}

// Close stops the bus. Pending events remain readable via Next; further
// publishes fail. Safe to call more than once.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	close(b.done)
}

// Pending reports the number of queued events across all classes.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Drops reports how many events of the given class have been evicted.
func (b *Bus) Drops(class string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drops[class]
}

// TotalDrops reports evictions across all classes.
func (b *Bus) TotalDrops() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total uint64
	for _, n := range b.drops {
		total += n
	}
	return total
}
