// Package volume watches the audio mixer and publishes de-duplicated
// volume/mute readings per channel. The pulse backend pushes change
// notifications; a poll ticker acts as a floor so the system backend (and a
// pulse server that stops signalling) still converges. Volume and mute
// commands are delivered to the same mixer; their effect is observed
// through the next reading, never written into state directly.
package volume

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
const DefaultPollInterval = 500 * time.Millisecond

var (
	// ErrNotConnected is returned for commands while the mixer is down.
	ErrNotConnected = errors.New("volume: mixer not connected")
	// ErrUnsupportedChannel is returned when the backend cannot address
	// the requested channel.
	ErrUnsupportedChannel = errors.New("volume: channel not supported by backend")
)

// Mixer abstracts an audio backend. Implementations report the channels
// they support and accept commands for them.
type Mixer interface {
	// Read returns one reading per supported channel.
	Read(ctx context.Context) ([]event.VolumeChanged, error)
	// Updates returns a channel that ticks when the backend signals a
	// possible change. A nil channel means poll-only. The channel is
	// closed when the backend connection ends.
	Updates() <-chan struct{}
	// SetVolume sets the level for one channel, in [0,100].
	SetVolume(ctx context.Context, ch event.Channel, level int) error
	// ToggleMute flips the mute switch for one channel.
	ToggleMute(ctx context.Context, ch event.Channel) error
	Close() error
}

// MixerFactory opens a Mixer. Called again after failures, with backoff.
type MixerFactory func(ctx context.Context) (Mixer, error)

// Config holds the adapter configuration.
type Config struct {
	// PollInterval is the floor between readings. Zero uses the default.
	PollInterval time.Duration
	// ReconnectMin/ReconnectMax bound the backoff after mixer failures.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Adapter is the volume source adapter.
type Adapter struct {
	cfg     Config
	connect MixerFactory
	logger  *slog.Logger

	mu      sync.Mutex
	healthy bool
	mixer   Mixer
	last    map[event.Channel]event.VolumeChanged
}

// New creates the adapter. The factory must not be nil.
func New(cfg Config, connect MixerFactory, logger *slog.Logger) *Adapter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		cfg:     cfg,
		connect: connect,
		logger:  logger,
		last:    make(map[event.Channel]event.VolumeChanged),
	}
}

// Name returns the adapter identifier.
func (a *Adapter) Name() string { return "volume" }

// Domain returns the command domain this adapter serves.
func (a *Adapter) Domain() event.Domain { return event.DomainVolume }

// Healthy reports whether the mixer connection is up.
func (a *Adapter) Healthy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.healthy
}

// Run samples the mixer until ctx is cancelled, reconnecting with backoff
// when it fails.
func (a *Adapter) Run(ctx context.Context, pub adapters.Publisher) error {
	backoff := adapters.NewBackoff(a.cfg.ReconnectMin, a.cfg.ReconnectMax)

	for {
		err := a.session(ctx, pub, backoff)
		if ctx.Err() != nil {
			a.setLive(pub, false)
			return nil
		}

		a.setLive(pub, false)
		a.logger.Warn("mixer unavailable", "error", err)
		if !backoff.Sleep(ctx) {
			return nil
		}
	}
}

func (a *Adapter) session(ctx context.Context, pub adapters.Publisher, backoff *adapters.Backoff) error {
	mixer, err := a.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect mixer: %w", err)
	}
	defer func() {
		a.mu.Lock()
		a.mixer = nil
		a.mu.Unlock()
		mixer.Close()
	}()

	stop := context.AfterFunc(ctx, func() { mixer.Close() })
	defer stop()

	a.mu.Lock()
	a.mixer = mixer
	a.mu.Unlock()

	if err := a.sample(ctx, mixer, pub); err != nil {
		return err
	}
	backoff.Reset()
	a.setLive(pub, true)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()
	updates := mixer.Updates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-updates:
			if !ok {
				return errors.New("mixer update stream ended")
			}
		}
		if err := a.sample(ctx, mixer, pub); err != nil {
			return err
		}
	}
}

// sample reads all channels and publishes those whose reading changed.
func (a *Adapter) sample(ctx context.Context, mixer Mixer, pub adapters.Publisher) error {
	readings, err := mixer.Read(ctx)
	if err != nil {
		return fmt.Errorf("read mixer: %w", err)
	}

	a.mu.Lock()
	var changed []event.VolumeChanged
	for _, r := range readings {
		if last, ok := a.last[r.Channel]; !ok || last != r {
			a.last[r.Channel] = r
			changed = append(changed, r)
		}
	}
	a.mu.Unlock()

	for _, r := range changed {
		pub.Publish(r)
	}
	return nil
}

// Deliver forwards volume commands to the connected mixer. The resulting
// state change comes back as a reading on the next update or poll tick.
func (a *Adapter) Deliver(ctx context.Context, cmd command.Command) error {
	a.mu.Lock()
	mixer := a.mixer
	a.mu.Unlock()

	switch c := cmd.(type) {
	case *command.SetVolume:
		if mixer == nil {
			return ErrNotConnected
		}
		if err := mixer.SetVolume(ctx, c.Channel, c.Level); err != nil {
			return fmt.Errorf("set %s volume to %d: %w", c.Channel, c.Level, err)
		}
		return nil
	case *command.ToggleMute:
		if mixer == nil {
			return ErrNotConnected
		}
		if err := mixer.ToggleMute(ctx, c.Channel); err != nil {
			return fmt.Errorf("toggle %s mute: %w", c.Channel, err)
		}
		return nil
	default:
		return adapters.ErrUnsupportedCommand
	}
}

func (a *Adapter) setLive(pub adapters.Publisher, live bool) {
	a.mu.Lock()
	if a.healthy == live {
		a.mu.Unlock()
		return
	}
	a.healthy = live
	a.mu.Unlock()

	pub.Publish(event.LivenessChanged{Source: event.DomainVolume, Live: live})
}
