package config

import (
	"fmt"
	"time"
)

// Config is the full swaypulse configuration tree.
type Config struct {
	Daemon DaemonConfig `toml:"daemon"`
	Sway   SwayConfig   `toml:"sway"`
	Power  PowerConfig  `toml:"power"`
	Volume VolumeConfig `toml:"volume"`
	Stats  StatsConfig  `toml:"stats"`
	Bus    BusConfig    `toml:"bus"`
	UI     UIConfig     `toml:"ui"`
}

// DaemonConfig covers process-level concerns.
type DaemonConfig struct {
	// LogFile receives structured logs. The directory is created on start.
	LogFile string `toml:"log_file"`
	// Socket is the control socket path used by -send.
	Socket string `toml:"socket"`
}

// SwayConfig tunes the compositor adapter.
type SwayConfig struct {
	// Socket overrides SWAYSOCK/I3SOCK discovery.
	Socket string `toml:"socket"`
	// ReconnectMin is the first reconnect delay after a lost connection;
	// the delay doubles per attempt up to ReconnectMax.
	ReconnectMin Duration `toml:"reconnect_min"`
	ReconnectMax Duration `toml:"reconnect_max"`
}

// PowerConfig tunes the power adapter.
type PowerConfig struct {
	Enabled bool `toml:"enabled"`
	// PollInterval is the refresh floor; provider push notifications
	// arrive sooner when available.
	PollInterval Duration `toml:"poll_interval"`
}

// VolumeConfig tunes the mixer adapter.
type VolumeConfig struct {
	Enabled bool `toml:"enabled"`
	// Backend selects the mixer implementation: "pulse" (PulseAudio /
	// PipeWire native protocol, push-capable) or "system" (poll-only
	// fallback via the OS mixer).
	Backend      string   `toml:"backend"`
	PollInterval Duration `toml:"poll_interval"`
	// FeedbackSounds plays the freedesktop volume/plug sounds on changes.
	FeedbackSounds bool `toml:"feedback_sounds"`
	// SoundDir holds the .oga event sounds.
	SoundDir string `toml:"sound_dir"`
}

// StatsConfig tunes the system load sampler.
type StatsConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// BusConfig tunes the event bus.
type BusConfig struct {
	// Capacity is the pending-event depth per event class before the
	// oldest of that class is dropped.
	Capacity int `toml:"capacity"`
}

// UIConfig tunes the rendering layer.
type UIConfig struct {
	Theme string `toml:"theme"`
	// CriticalPercent is the battery level below which the critical
	// banner is shown while discharging.
	CriticalPercent int `toml:"critical_percent"`
}

// Backend values accepted by VolumeConfig.
const (
	VolumeBackendPulse  = "pulse"
	VolumeBackendSystem = "system"
)

// Validate normalizes zero values to defaults and rejects settings that
// have no sensible interpretation.
func (c *Config) Validate() error {
	if c.Sway.ReconnectMin.Duration <= 0 {
		c.Sway.ReconnectMin = Duration{200 * time.Millisecond}
	}
	if c.Sway.ReconnectMax.Duration <= 0 {
		c.Sway.ReconnectMax = Duration{5 * time.Second}
	}
	if c.Sway.ReconnectMax.Duration < c.Sway.ReconnectMin.Duration {
		return fmt.Errorf("sway.reconnect_max %s below reconnect_min %s",
			c.Sway.ReconnectMax, c.Sway.ReconnectMin)
	}
	if c.Power.PollInterval.Duration <= 0 {
		c.Power.PollInterval = Duration{10 * time.Second}
	}
	if c.Volume.PollInterval.Duration <= 0 {
		c.Volume.PollInterval = Duration{500 * time.Millisecond}
	}
	switch c.Volume.Backend {
	case VolumeBackendPulse, VolumeBackendSystem:
	case "":
		c.Volume.Backend = VolumeBackendPulse
	default:
		return fmt.Errorf("volume.backend %q: want %q or %q",
			c.Volume.Backend, VolumeBackendPulse, VolumeBackendSystem)
	}
	if c.Stats.Interval.Duration <= 0 {
		c.Stats.Interval = Duration{2 * time.Second}
	}
	if c.Bus.Capacity <= 0 {
		c.Bus.Capacity = 64
	}
	if c.UI.CriticalPercent < 0 || c.UI.CriticalPercent > 100 {
		return fmt.Errorf("ui.critical_percent %d outside [0,100]", c.UI.CriticalPercent)
	}
	if c.UI.CriticalPercent == 0 {
		c.UI.CriticalPercent = 10
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "default"
	}
	return nil
}
