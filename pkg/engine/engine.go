// Package engine assembles the pipeline: source adapters publish events to
// the bus, a single coordinator folds them into the view model store, and
// user commands flow the other way through a bounded queue to the adapter
// that owns the domain. State is only ever written by the coordinator;
// commands change the world and the world reports back as events.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters"
	"gitlab.com/tinyland/lab/swaypulse/pkg/bus"
	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
)

// DefaultCommandQueue is the pending command limit.
const DefaultCommandQueue = 16

// ErrBusy is returned by Submit when the command queue is full.
var ErrBusy = errors.New("engine: command queue full")

// Config holds the engine configuration.
type Config struct {
	// BusCapacity is the per-class event queue depth. Zero uses the bus
	// default.
	BusCapacity int
	// CommandQueue is the pending command limit. Zero uses the default.
	CommandQueue int
}

// Engine owns the bus, the store, and the adapter supervisor.
type Engine struct {
	bus    *bus.Bus
	store  *state.Store
	sup    *adapters.Supervisor
	logger *slog.Logger
	cmds   chan command.Command
}

// New creates an engine. Adapters are added with Register before Run.
func New(cfg Config, logger *slog.Logger) *Engine {
	if cfg.CommandQueue <= 0 {
		cfg.CommandQueue = DefaultCommandQueue
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := bus.New(cfg.BusCapacity)
	return &Engine{
		bus:    b,
		store:  state.NewStore(logger),
		sup:    adapters.NewSupervisor(b, logger),
		logger: logger,
		cmds:   make(chan command.Command, cfg.CommandQueue),
	}
}

// Store exposes the view model store for observers and snapshot readers.
func (e *Engine) Store() *state.Store { return e.store }

// Snapshot returns the current view model.
func (e *Engine) Snapshot() state.Snapshot { return e.store.Current() }

// Revision returns the store revision counter.
func (e *Engine) Revision() uint64 { return e.store.Revision() }

// Register adds a source adapter. Must be called before Run.
func (e *Engine) Register(a adapters.Adapter) error { return e.sup.Register(a) }

// Adapters reports supervisor status for every registered adapter.
func (e *Engine) Adapters() []adapters.Status { return e.sup.AllStatus() }

// Drops reports how many events the bus has evicted so far.
func (e *Engine) Drops() uint64 { return e.bus.TotalDrops() }

// Pending reports the number of events waiting on the bus.
func (e *Engine) Pending() int { return e.bus.Pending() }

// Submit validates and queues a command for delivery to its domain
// adapter. It never blocks: a full queue fails with ErrBusy. Submit never
// touches the store; the command's effect arrives later as an event.
func (e *Engine) Submit(cmd command.Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	select {
	case e.cmds <- cmd:
		return nil
	default:
		e.logger.Warn("command queue full", "domain", cmd.Domain())
		return ErrBusy
	}
}

// Run starts the adapters and processes events and commands until ctx is
// cancelled. On return all adapters have stopped and every event they
// managed to publish has been folded into the store.
func (e *Engine) Run(ctx context.Context) error {
	e.sup.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.deliverLoop(ctx)
	}()

	for {
		ev, err := e.bus.Next(ctx)
		if err != nil {
			break
		}
		e.store.Apply(ev)
	}

	// Shutdown: let the adapters finish, then fold whatever they
	// published on the way out (liveness-down transitions, mostly).
	e.sup.Wait()
	e.bus.Close()
	for {
		ev, err := e.bus.Next(context.Background())
		if err != nil {
			break
		}
		e.store.Apply(ev)
	}

	wg.Wait()
	return nil
}

// deliverLoop forwards queued commands to the owning adapter.
func (e *Engine) deliverLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-e.cmds:
			if err := e.sup.Deliver(ctx, cmd); err != nil {
				e.logger.Warn("command not delivered", "domain", cmd.Domain(), "error", err)
			}
		}
	}
}
