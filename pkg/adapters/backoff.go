package adapters

import (
	"context"
	"time"
)

// Backoff produces an exponentially growing delay sequence, doubling from
// Min up to Max: 200ms, 400ms, 800ms, ... capped. Not safe for concurrent
// use; each reconnect loop owns its own.
type Backoff struct {
	Min time.Duration
	Max time.Duration

	attempt int
}

// NewBackoff returns a schedule from min to max. Non-positive bounds fall
// back to 200ms/5s.
func NewBackoff(min, max time.Duration) *Backoff {
	if min <= 0 {
		min = 200 * time.Millisecond
	}
	if max <= 0 {
		max = 5 * time.Second
	}
	if max < min {
		max = min
	}
	return &Backoff{Min: min, Max: max}
}

// Next returns the delay for the current attempt and advances the schedule.
func (b *Backoff) Next() time.Duration {
	d := b.Min << b.attempt
	if d <= 0 || d > b.Max { // <<= overflow guards the cap too
		d = b.Max
	}
	if d < b.Max {
		b.attempt++
	}
	return d
}

// Reset restarts the schedule after a successful connection.
func (b *Backoff) Reset() { b.attempt = 0 }

// Sleep waits for the next delay or until ctx is done, reporting false on
// cancellation.
func (b *Backoff) Sleep(ctx context.Context) bool {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
