package state

import (
	"log/slog"
	"sync"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// Observer receives the snapshot and revision after every applied change.
// It runs on the coordinator goroutine and must not block; rendering layers
// with their own event loop should redispatch instead of rendering inline.
// The snapshot is a private copy but shared between observers of the same
// revision: treat it as read-only.
type Observer func(Snapshot, uint64)

// Store owns the current view model. Apply is single-writer: only the
// coordinator calls it. Readers get independent copies and can never
// observe a partially applied update.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	rev       uint64
	observers map[int]Observer
	nextObs   int

	logger *slog.Logger
}

// NewStore returns a store holding the empty startup snapshot at
// revision 0.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		snap:      NewSnapshot(),
		observers: make(map[int]Observer),
		logger:    logger,
	}
}

// Current returns an independent copy of the current snapshot.
func (st *Store) Current() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap.Clone()
}

// Revision returns the number of state-changing applications so far.
func (st *Store) Revision() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.rev
}

// Subscribe registers an observer for future changes and returns its
// unsubscribe function.
func (st *Store) Subscribe(fn Observer) func() {
	st.mu.Lock()
	id := st.nextObs
	st.nextObs++
	st.observers[id] = fn
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.observers, id)
		st.mu.Unlock()
	}
}

// Apply runs the reducer on the current snapshot. If the event changes
// state, the revision is incremented and every observer is notified exactly
// once, outside the store lock. A result that violates a snapshot
// invariant is rejected loudly and leaves the store untouched: that case
// means an adapter upstream broke its contract.
func (st *Store) Apply(ev event.Event) bool {
	st.mu.Lock()
	next, changed := Reduce(st.snap, ev)
	if !changed {
		st.mu.Unlock()
		return false
	}
	if err := next.validate(); err != nil {
		st.mu.Unlock()
		st.logger.Error("rejected event violating state invariant",
			"event", ev.Class(),
			"domain", ev.Domain(),
			"error", err,
		)
		return false
	}
	st.snap = next
	st.rev++
	rev := st.rev
	out := next.Clone()
	fns := make([]Observer, 0, len(st.observers))
	for _, fn := range st.observers {
		fns = append(fns, fn)
	}
	st.mu.Unlock()

	for _, fn := range fns {
		fn(out, rev)
	}
	return true
}
