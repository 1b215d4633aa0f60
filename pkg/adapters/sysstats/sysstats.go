// Package sysstats polls load averages and memory pressure for the status
// line. Readings are rounded before de-duplication so measurement jitter
// does not turn into a publish storm.
package sysstats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters"
	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// DefaultInterval is the polling cadence.
const DefaultInterval = 2 * time.Second

// Sampler produces one reading. The production sampler asks the kernel;
// tests inject fixed values.
type Sampler func(ctx context.Context) (event.StatsChanged, error)

// SystemSampler reads load averages and virtual memory usage.
func SystemSampler(ctx context.Context) (event.StatsChanged, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return event.StatsChanged{}, fmt.Errorf("load averages: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return event.StatsChanged{}, fmt.Errorf("virtual memory: %w", err)
	}
	return event.StatsChanged{
		Load1:          round2(avg.Load1),
		Load5:          round2(avg.Load5),
		Load15:         round2(avg.Load15),
		MemUsedPercent: round1(vm.UsedPercent),
	}, nil
}

// Config holds the adapter configuration.
type Config struct {
	// Interval is the polling cadence. Zero uses the default.
	Interval time.Duration
}

// Adapter is the system statistics source adapter.
type Adapter struct {
	cfg    Config
	sample Sampler
	logger *slog.Logger

	mu      sync.Mutex
	healthy bool
	last    *event.StatsChanged
}

// New creates the adapter. A nil sampler uses the system sampler.
func New(cfg Config, sample Sampler, logger *slog.Logger) *Adapter {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if sample == nil {
		sample = SystemSampler
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{cfg: cfg, sample: sample, logger: logger}
}

// Name returns the adapter identifier.
func (a *Adapter) Name() string { return "sysstats" }

// Domain returns the command domain this adapter serves.
func (a *Adapter) Domain() event.Domain { return event.DomainStats }

// Healthy reports whether the last sample succeeded.
func (a *Adapter) Healthy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.healthy
}

// Run polls until ctx is cancelled. A failed sample flips liveness down and
// the next tick simply tries again: there is no connection to rebuild.
func (a *Adapter) Run(ctx context.Context, pub adapters.Publisher) error {
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		a.once(ctx, pub)
		select {
		case <-ctx.Done():
			a.setLive(pub, false)
			return nil
		case <-ticker.C:
		}
	}
}

func (a *Adapter) once(ctx context.Context, pub adapters.Publisher) {
	reading, err := a.sample(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		a.logger.Warn("stats sample failed", "error", err)
		a.setLive(pub, false)
		return
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
	a.setLive(pub, true)
}

// Deliver rejects everything: statistics are read-only.
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

	pub.Publish(event.LivenessChanged{Source: event.DomainStats, Live: live})
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
