package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
)

// Supervisor manages the set of registered adapters: it runs each one in
// its own goroutine, restarts crashed ones with backoff, and routes
// outbound commands to the adapter owning the command's domain. Safe for
// concurrent use.
type Supervisor struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	statuses map[string]*Status

	pub    Publisher
	logger *slog.Logger
	wg     sync.WaitGroup

	// restart schedule bounds for crashed adapters
	restartMin time.Duration
	restartMax time.Duration
}

// NewSupervisor returns an empty supervisor publishing to pub.
func NewSupervisor(pub Publisher, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		adapters:   make(map[string]Adapter),
		statuses:   make(map[string]*Status),
		pub:        pub,
		logger:     logger,
		restartMin: 500 * time.Millisecond,
		restartMax: 10 * time.Second,
	}
}

// Register adds an adapter. It returns an error if the name is already
// taken or another adapter owns the same command domain.
func (s *Supervisor) Register(a Adapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := a.Name()
	if _, exists := s.adapters[name]; exists {
		return fmt.Errorf("adapter %q already registered", name)
	}
	for other, existing := range s.adapters {
		if existing.Domain() == a.Domain() {
			return fmt.Errorf("domain %q already owned by adapter %q", a.Domain(), other)
		}
	}

	s.adapters[name] = a
	s.statuses[name] = &Status{Name: name, Domain: a.Domain()}
	return nil
}

// List returns the sorted names of all registered adapters.
func (s *Supervisor) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.adapters))
	for name := range s.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the runtime status for the named adapter.
func (s *Supervisor) Status(name string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statuses[name]
	if !ok {
		return Status{}, false
	}
	out := *st
	if a, ok := s.adapters[name]; ok {
		out.Healthy = a.Healthy()
	}
	return out, true
}

// AllStatus returns a copy of every adapter's status, sorted by name.
func (s *Supervisor) AllStatus() []Status {
	names := s.List()
	out := make([]Status, 0, len(names))
	for _, name := range names {
		if st, ok := s.Status(name); ok {
			out = append(out, st)
		}
	}
	return out
}

// Start launches every registered adapter. It returns immediately; use
// Wait to block until all adapters have stopped after ctx cancellation.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, a := range s.adapters {
		s.wg.Add(1)
		go s.supervise(ctx, name, a)
	}
}

// Wait blocks until all adapter goroutines have returned.
func (s *Supervisor) Wait() { s.wg.Wait() }

// supervise runs one adapter until ctx is done, restarting it with backoff
// when Run returns an error. Inbound subscriptions must keep being retried
// forever: the UI has nothing to show without them.
func (s *Supervisor) supervise(ctx context.Context, name string, a Adapter) {
	defer s.wg.Done()

	backoff := NewBackoff(s.restartMin, s.restartMax)
	for {
		s.updateStatus(name, func(st *Status) { st.LastStart = time.Now() })
		s.logger.Debug("starting adapter", "adapter", name, "domain", a.Domain())

		err := a.Run(ctx, s.pub)
		if ctx.Err() != nil {
			s.logger.Debug("adapter stopped", "adapter", name)
			return
		}
		if err == nil {
			// Run has no work left but we were not cancelled; treat as a
			// crash so the domain keeps being served.
			err = fmt.Errorf("adapter %q returned early", name)
		}

		s.updateStatus(name, func(st *Status) {
			st.Restarts++
			st.LastError = err
		})
		s.logger.Warn("adapter crashed, restarting", "adapter", name, "error", err)

		if !backoff.Sleep(ctx) {
			return
		}
	}
}

// Deliver routes cmd to the adapter owning its domain. Failures are
// retried once, then logged and dropped; delivery is best-effort by
// contract.
func (s *Supervisor) Deliver(ctx context.Context, cmd command.Command) error {
	s.mu.RLock()
	var target Adapter
	for _, a := range s.adapters {
		if a.Domain() == cmd.Domain() {
			target = a
			break
		}
	}
	s.mu.RUnlock()

	if target == nil {
		return fmt.Errorf("no adapter for domain %q", cmd.Domain())
	}

	err := target.Deliver(ctx, cmd)
	if err == nil || ctx.Err() != nil {
		return err
	}

	s.logger.Debug("command delivery failed, retrying once",
		"adapter", target.Name(), "command", fmt.Sprintf("%T", cmd), "error", err)
	if err = target.Deliver(ctx, cmd); err != nil {
		s.logger.Warn("command dropped after retry",
			"adapter", target.Name(), "command", fmt.Sprintf("%T", cmd), "error", err)
		return fmt.Errorf("deliver to %q: %w", target.Name(), err)
	}
	return nil
}

// updateStatus mutates the status entry for the named adapter under lock.
func (s *Supervisor) updateStatus(name string, fn func(st *Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.statuses[name]; ok {
		fn(st)
	}
}
