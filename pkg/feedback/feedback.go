// Package feedback plays freedesktop event sounds on audible state
// transitions: volume movement and the charger being plugged or unplugged.
// It observes the view model store, so it reacts to what actually changed,
// not to raw adapter traffic.
package feedback

import (
	"context"
	"log/slog"
	"maps"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
)

// DefaultSoundDir holds the freedesktop sound theme's stereo event files.
const DefaultSoundDir = "/usr/share/sounds/freedesktop/stereo"

// minGap suppresses repeats of the same sound, so dragging a volume slider
// clicks once instead of machine-gunning.
const minGap = 150 * time.Millisecond

// playTimeout bounds a single player invocation.
const playTimeout = 5 * time.Second

// Event sound names, resolved to <dir>/<name>.oga.
const (
	soundVolume = "audio-volume-change"
	soundPlug   = "power-plug"
	soundUnplug = "power-unplug"
)

// players lists known command-line players, in preference order.
var players = []struct {
	bin  string
	args func(file string) []string
}{
	{"paplay", func(f string) []string { return []string{f} }},
	{"pw-play", func(f string) []string { return []string{f} }},
	{"ogg123", func(f string) []string { return []string{"-q", f} }},
}

// Config holds the feedback configuration.
type Config struct {
	// SoundDir overrides the sound file directory when non-empty.
	SoundDir string
}

// Player watches snapshots and plays transition sounds. Attach it to a
// store with Attach; it is inert until then.
type Player struct {
	dir    string
	logger *slog.Logger
	run    func(ctx context.Context, file string) error

	mu     sync.Mutex
	prev   *state.Snapshot
	played map[string]time.Time
}

// New resolves a player binary and returns a Player. When no player is
// installed the returned Player stays silent and logs once.
func New(cfg Config, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	dir := cfg.SoundDir
	if dir == "" {
		dir = DefaultSoundDir
	}

	p := &Player{dir: dir, logger: logger, played: make(map[string]time.Time)}
	for _, candidate := range players {
		path, err := exec.LookPath(candidate.bin)
		if err != nil {
			continue
		}
		args := candidate.args
		p.run = func(ctx context.Context, file string) error {
			return exec.CommandContext(ctx, path, args(file)...).Run()
		}
		logger.Debug("event sounds enabled", "player", path)
		return p
	}
	logger.Info("no audio player found, event sounds disabled")
	return p
}

// Attach subscribes to the store. The returned function unsubscribes.
func (p *Player) Attach(st *state.Store) func() {
	return st.Subscribe(p.observe)
}

func (p *Player) observe(snap state.Snapshot, _ uint64) {
	p.mu.Lock()
	prev := p.prev
	cur := snap
	p.prev = &cur
	p.mu.Unlock()

	// The first snapshot is a baseline, not a transition.
	if prev == nil {
		return
	}
	for _, name := range transitions(*prev, snap) {
		p.play(name)
	}
}

// transitions names the sounds owed for the change from prev to cur.
func transitions(prev, cur state.Snapshot) []string {
	var names []string
	if !maps.Equal(prev.Volume, cur.Volume) {
		names = append(names, soundVolume)
	}
	if prev.Power.Present && cur.Power.Present && prev.Power.Charging != cur.Power.Charging {
		if cur.Power.Charging {
			names = append(names, soundPlug)
		} else {
			names = append(names, soundUnplug)
		}
	}
	return names
}

// play fires the sound asynchronously. Playback failure is logged, never
// propagated: feedback must not disturb the pipeline.
func (p *Player) play(name string) {
	if p.run == nil {
		return
	}

	p.mu.Lock()
	if last, ok := p.played[name]; ok && time.Since(last) < minGap {
		p.mu.Unlock()
		return
	}
	p.played[name] = time.Now()
	p.mu.Unlock()

	file := filepath.Join(p.dir, name+".oga")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := p.run(ctx, file); err != nil {
			p.logger.Debug("event sound failed", "sound", name, "error", err)
		}
	}()
}
