// Package power watches the system power supply and publishes
// de-duplicated battery readings. Changes arrive by push when the provider
// can signal them (UPower property-change signals); a poll ticker acts as a
// floor so a lost signal can only delay a reading, never suppress it.
package power

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters"
	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// DefaultPollInterval is the poll floor between forced readings.
const DefaultPollInterval = 10 * time.Second

// Provider reads power state from some backend. The production
// implementation is UPower; tests inject fakes.
type Provider interface {
	// Read returns the current reading.
	Read(ctx context.Context) (event.PowerChanged, error)
	// Changes returns a channel that ticks when the backend signals a
	// possible change. A nil channel means the backend cannot push and
	// the adapter relies on polling alone. The channel is closed when
	// the backend connection ends.
	Changes() <-chan struct{}
	Close() error
}

// ProviderFactory opens a Provider. Called again after failures, with
// backoff.
type ProviderFactory func(ctx context.Context) (Provider, error)

// Config holds the adapter configuration.
type Config struct {
	// PollInterval is the floor between readings. Zero uses the default.
	PollInterval time.Duration
	// ReconnectMin/ReconnectMax bound the backoff after provider
	// failures. Zero values use the adapters defaults.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Adapter is the power source adapter.
type Adapter struct {
	cfg     Config
	connect ProviderFactory
	logger  *slog.Logger

	mu      sync.Mutex
	healthy bool
	last    *event.PowerChanged
}

// New creates the adapter. The factory must not be nil.
func New(cfg Config, connect ProviderFactory, logger *slog.Logger) *Adapter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{cfg: cfg, connect: connect, logger: logger}
}

// Name returns the adapter identifier.
func (a *Adapter) Name() string { return "power" }

// Domain returns the command domain this adapter serves.
func (a *Adapter) Domain() event.Domain { return event.DomainPower }

// Healthy reports whether the provider connection is up.
func (a *Adapter) Healthy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.healthy
}

// Run samples the provider until ctx is cancelled, reconnecting with
// backoff when it fails.
func (a *Adapter) Run(ctx context.Context, pub adapters.Publisher) error {
	backoff := adapters.NewBackoff(a.cfg.ReconnectMin, a.cfg.ReconnectMax)

	for {
		err := a.session(ctx, pub, backoff)
		if ctx.Err() != nil {
			a.setLive(pub, false)
			return nil
		}

		a.setLive(pub, false)
		a.logger.Warn("power source unavailable", "error", err)
		if !backoff.Sleep(ctx) {
			return nil
		}
	}
}

func (a *Adapter) session(ctx context.Context, pub adapters.Publisher, backoff *adapters.Backoff) error {
	prov, err := a.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect power source: %w", err)
	}
	defer prov.Close()

	stop := context.AfterFunc(ctx, func() { prov.Close() })
	defer stop()

	if err := a.sample(ctx, prov, pub); err != nil {
		return err
	}
	backoff.Reset()
	a.setLive(pub, true)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()
	changes := prov.Changes()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-changes:
			if !ok {
				return errors.New("power change stream ended")
			}
		}
		if err := a.sample(ctx, prov, pub); err != nil {
			return err
		}
	}
}

// sample reads once and publishes when the reading differs from the last
// published one.
func (a *Adapter) sample(ctx context.Context, prov Provider, pub adapters.Publisher) error {
	reading, err := prov.Read(ctx)
	if err != nil {
		return fmt.Errorf("read power state: %w", err)
	}

	a.mu.Lock()
	dup := a.last != nil && *a.last == reading
	if !dup {
		r := reading
		a.last = &r
	}
	a.mu.Unlock()

	if !dup {
		pub.Publish(reading)
	}
	return nil
}

// Deliver rejects everything: power state is read-only.
func (a *Adapter) Deliver(ctx context.Context, cmd command.Command) error {
	return adapters.ErrUnsupportedCommand
}

func (a *Adapter) setLive(pub adapters.Publisher, live bool) {
	a.mu.Lock()
	if a.healthy == live {
		a.mu.Unlock()
		return
	}
	a.healthy = live
	a.mu.Unlock()

	pub.Publish(event.LivenessChanged{Source: event.DomainPower, Live: live})
}
