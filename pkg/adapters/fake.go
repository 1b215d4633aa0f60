package adapters

import (
	"context"
	"sync"
	"sync/atomic"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// FakeAdapter implements Adapter for tests. By default Run publishes the
// scripted events in order and then parks until cancellation; Deliver
// records the command. All knobs are configurable via options.
type FakeAdapter struct {
	name   string
	domain event.Domain

	mu         sync.Mutex
	script     []event.Event
	delivered  []command.Command
	deliverErr error
	healthy    bool

	runCount atomic.Int64

	// RunFunc, if set, replaces the default Run behavior entirely. Tests
	// use it to simulate crashes or custom event timing.
	RunFunc func(ctx context.Context, pub Publisher) error
}

// FakeOption configures a FakeAdapter.
type FakeOption func(*FakeAdapter)

// WithScript sets the events Run publishes, in order.
func WithScript(evs ...event.Event) FakeOption {
	return func(f *FakeAdapter) { f.script = evs }
}

// WithDeliverError makes every Deliver call fail with err.
func WithDeliverError(err error) FakeOption {
	return func(f *FakeAdapter) { f.deliverErr = err }
}

// WithRunFunc replaces Run.
func WithRunFunc(fn func(ctx context.Context, pub Publisher) error) FakeOption {
	return func(f *FakeAdapter) { f.RunFunc = fn }
}

// WithHealthy sets the initial Healthy() value.
func WithHealthy(h bool) FakeOption {
	return func(f *FakeAdapter) { f.healthy = h }
}

// NewFakeAdapter returns a fake adapter for the given name and domain.
func NewFakeAdapter(name string, domain event.Domain, opts ...FakeOption) *FakeAdapter {
	f := &FakeAdapter{name: name, domain: domain, healthy: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FakeAdapter) Name() string         { return f.name }
func (f *FakeAdapter) Domain() event.Domain { return f.domain }

func (f *FakeAdapter) Healthy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthy
}

// SetHealthy updates the health flag.
func (f *FakeAdapter) SetHealthy(h bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthy = h
}

// Run publishes the script and parks until ctx is done.
func (f *FakeAdapter) Run(ctx context.Context, pub Publisher) error {
	f.runCount.Add(1)

	if f.RunFunc != nil {
		return f.RunFunc(ctx, pub)
	}

	f.mu.Lock()
	script := f.script
	f.mu.Unlock()
	for _, ev := range script {
		if err := pub.Publish(ev); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return nil
}

// Deliver records the command and returns the configured error.
func (f *FakeAdapter) Deliver(_ context.Context, cmd command.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deliverErr != nil {
		return f.deliverErr
	}
	f.delivered = append(f.delivered, cmd)
	return nil
}

// Delivered returns a copy of the commands delivered so far.
func (f *FakeAdapter) Delivered() []command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Command, len(f.delivered))
	copy(out, f.delivered)
	return out
}

// RunCount reports how many times Run has been entered.
func (f *FakeAdapter) RunCount() int64 { return f.runCount.Load() }
