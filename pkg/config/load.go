package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/swaypulse/config.toml
//  2. ~/.config/swaypulse/config.toml
//
// If no file exists, returns DefaultConfig().
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Daemon: DaemonConfig{
			LogFile: filepath.Join(xdgStateHome(home), "swaypulse", "swaypulse.log"),
			Socket:  defaultControlSocket(),
		},
		Sway: SwayConfig{
			ReconnectMin: Duration{200 * time.Millisecond},
			ReconnectMax: Duration{5 * time.Second},
		},
		Power: PowerConfig{
			Enabled:      true,
			PollInterval: Duration{10 * time.Second},
		},
		Volume: VolumeConfig{
			Enabled:        true,
			Backend:        VolumeBackendPulse,
			PollInterval:   Duration{500 * time.Millisecond},
			FeedbackSounds: true,
			SoundDir:       "/usr/share/sounds/freedesktop/stereo",
		},
		Stats: StatsConfig{
			Enabled:  true,
			Interval: Duration{2 * time.Second},
		},
		Bus: BusConfig{
			Capacity: 64,
		},
		UI: UIConfig{
			Theme:           "default",
			CriticalPercent: 10,
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SWAYPULSE_LOG_FILE"); v != "" {
		cfg.Daemon.LogFile = v
	}
	if v := os.Getenv("SWAYPULSE_SOCKET"); v != "" {
		cfg.Daemon.Socket = v
	}
	if v := os.Getenv("SWAYPULSE_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("SWAYPULSE_VOLUME_BACKEND"); v != "" {
		cfg.Volume.Backend = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "swaypulse", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "swaypulse", "config.toml"))
	}

	return paths
}

// defaultControlSocket places the control socket in the runtime dir when
// available, /tmp otherwise.
func defaultControlSocket() string {
	if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
		return filepath.Join(v, "swaypulse.sock")
	}
	return filepath.Join(os.TempDir(), "swaypulse.sock")
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgStateHome returns XDG_STATE_HOME or ~/.local/state as fallback.
func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
