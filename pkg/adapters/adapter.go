// Package adapters defines the contract between external system sources
// (compositor, power supply, audio mixer, load sampler) and the core. Each
// adapter owns its connection or poll loop, publishes typed events to the
// bus, and executes the outbound commands for its domain. Implementations
// live in sub-packages (e.g., pkg/adapters/sway) and are driven by the
// Supervisor.
package adapters

import (
	"context"
	"errors"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// ErrUnsupportedCommand is returned by Deliver when a command does not
// belong to the adapter's domain.
var ErrUnsupportedCommand = errors.New("adapters: command not supported by this adapter")

// Publisher is the event sink handed to adapters. The bus satisfies it.
type Publisher interface {
	Publish(ev event.Event) error
}

// Adapter bridges one external system to the core's event/command types.
//
// Run owns the inbound side: it subscribes, polls, de-duplicates, and
// publishes until ctx is cancelled. Connection loss is handled inside Run
// (reconnect with backoff, liveness events); Run returning a non-nil error
// means the adapter itself failed and the supervisor restarts it.
//
// Deliver executes one outbound command against the external system. It is
// best-effort: the effect, if any, is observed later via the event path.
type Adapter interface {
	Name() string
	Domain() event.Domain
	Run(ctx context.Context, pub Publisher) error
	Deliver(ctx context.Context, cmd command.Command) error

	// Healthy reports whether the adapter's upstream connection is
	// currently established.
	Healthy() bool
}

// Status tracks the runtime state of a supervised adapter.
type Status struct {
	Name      string
	Domain    event.Domain
	Healthy   bool
	Restarts  int64
	LastError error
	LastStart time.Time
}
