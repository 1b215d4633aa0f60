// swaypulse is a status shell core for the sway and i3 compositors.
//
// It aggregates compositor state, battery, audio volume, keyboard layout,
// and system load into a single versioned view model, renders it as an
// interactive terminal dashboard, and feeds user intents (focus workspace,
// set volume, switch layout) back to the sources. External bars can consume
// the same view model as a JSON stream, and shell keybindings can script a
// running instance through its control socket.
//
// Usage:
//
//	swaypulse [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/swaypulse/config.toml)
//	-listen         Stream one JSON line per state revision to stdout
//	-oneshot        Wait for the sources to report once, print the snapshot, exit
//	-send string    Send a command to a running instance's control socket
//	-theme string   Override the configured color theme
//	-verbose        Enable verbose logging
//	-version        Print version and exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters/power"
	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters/sway"
	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters/sysstats"
	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters/volume"
	"gitlab.com/tinyland/lab/swaypulse/pkg/config"
	"gitlab.com/tinyland/lab/swaypulse/pkg/ctl"
	"gitlab.com/tinyland/lab/swaypulse/pkg/engine"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/feedback"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/terminal"
	"gitlab.com/tinyland/lab/swaypulse/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// oneshotWait bounds how long -oneshot waits for the enabled sources to
// report before printing whatever has arrived.
const oneshotWait = 3 * time.Second

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		runListen   = flag.Bool("listen", false, "Stream one JSON line per state revision to stdout")
		runOneshot  = flag.Bool("oneshot", false, "Wait for the sources to report once, print the snapshot, exit")
		sendLine    = flag.String("send", "", "Send a command to a running instance's control socket")
		themeName   = flag.String("theme", "", "Override the configured color theme")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("swaypulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	if *themeName != "" {
		cfg.UI.Theme = *themeName
	}

	// -send talks to the instance that owns the pipeline; it needs no
	// engine of its own.
	if *sendLine != "" {
		reply, err := ctl.NewClient(cfg.Daemon.Socket).Send(*sendLine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Println(reply)
		return
	}

	// The dashboard needs a real terminal of workable size; machine
	// consumers should use -listen instead.
	interactive := !*runListen && !*runOneshot
	if interactive {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Fprintln(os.Stderr, "stdout is not a terminal; use -listen for machine-readable output")
			os.Exit(1)
		}
		if size := terminal.GetSize(); !size.Fits() {
			fmt.Fprintf(os.Stderr, "terminal %dx%d is below the %dx%d minimum\n",
				size.Cols, size.Rows, terminal.MinCols, terminal.MinRows)
			os.Exit(1)
		}
	}

	// Setup log file directory
	if err := ensureLogDir(cfg.Daemon.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// Setup logging. The dashboard owns the terminal, so interactive runs
	// log to the file alone; stderr lines would scribble over the
	// alternate screen.
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	var logDst io.Writer = logFile
	if !interactive {
		logDst = io.MultiWriter(os.Stderr, logFile)
	}
	logger := slog.New(slog.NewTextHandler(logDst, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Assemble and start the pipeline
	eng, err := buildEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	engDone := make(chan error, 1)
	go func() { engDone <- eng.Run(ctx) }()

	// Long-running modes expose the control socket and play feedback
	// sounds; -oneshot exits too quickly for either to matter.
	if !*runOneshot {
		srv := ctl.NewServer(cfg.Daemon.Socket, eng, logger)
		if err := srv.Start(); err != nil {
			logger.Error("control socket unavailable", "error", err)
		} else {
			logger.Info("control socket ready", "path", cfg.Daemon.Socket)
			defer srv.Stop()
		}

		if cfg.Volume.FeedbackSounds {
			player := feedback.New(feedback.Config{SoundDir: cfg.Volume.SoundDir}, logger)
			detach := player.Attach(eng.Store())
			defer detach()
		}
	}

	// Determine operation mode
	switch {
	case *runListen:
		err = runListenMode(ctx, eng, isatty.IsTerminal(os.Stdout.Fd()))

	case *runOneshot:
		err = runOneshotMode(ctx, cfg, eng)

	default:
		logger.Info("starting swaypulse",
			"theme", cfg.UI.Theme,
			"socket", cfg.Daemon.Socket,
		)
		err = tui.Run(ctx, eng, tui.Options{
			Theme:           cfg.UI.Theme,
			CriticalPercent: cfg.UI.CriticalPercent,
		})
	}

	cancel()
	<-engDone

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("swaypulse exited with error", "error", err)
		os.Exit(1)
	}
}

// buildEngine assembles the pipeline from configuration: bus, store, and
// one source adapter per enabled domain. The sway adapter is always on;
// everything else honors its config section.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	eng := engine.New(engine.Config{BusCapacity: cfg.Bus.Capacity}, logger)

	swayCfg := sway.Config{
		Socket:       cfg.Sway.Socket,
		ReconnectMin: cfg.Sway.ReconnectMin.Duration,
		ReconnectMax: cfg.Sway.ReconnectMax.Duration,
	}
	if err := eng.Register(sway.New(swayCfg, sway.Dial(swayCfg), logger)); err != nil {
		return nil, fmt.Errorf("register sway adapter: %w", err)
	}

	if cfg.Power.Enabled {
		powerCfg := power.Config{PollInterval: cfg.Power.PollInterval.Duration}
		if err := eng.Register(power.New(powerCfg, power.ConnectUPower, logger)); err != nil {
			return nil, fmt.Errorf("register power adapter: %w", err)
		}
	}

	if cfg.Volume.Enabled {
		volCfg := volume.Config{PollInterval: cfg.Volume.PollInterval.Duration}
		connect := mixerFactory(cfg.Volume.Backend)
		if err := eng.Register(volume.New(volCfg, connect, logger)); err != nil {
			return nil, fmt.Errorf("register volume adapter: %w", err)
		}
	}

	if cfg.Stats.Enabled {
		statsCfg := sysstats.Config{Interval: cfg.Stats.Interval.Duration}
		if err := eng.Register(sysstats.New(statsCfg, nil, logger)); err != nil {
			return nil, fmt.Errorf("register stats adapter: %w", err)
		}
	}

	return eng, nil
}

// mixerFactory maps the configured backend name to a mixer constructor.
// Validate has already rejected unknown names.
func mixerFactory(backend string) volume.MixerFactory {
	if backend == config.VolumeBackendSystem {
		return func(context.Context) (volume.Mixer, error) { return volume.ConnectSystem() }
	}
	return func(context.Context) (volume.Mixer, error) { return volume.ConnectPulse("") }
}

// revisionFrame is the JSON shape written by -listen and -oneshot: the
// store revision plus the inlined snapshot fields.
type revisionFrame struct {
	Revision uint64 `json:"revision"`
	state.Snapshot
}

// runListenMode prints one JSON object per store revision until ctx is
// cancelled. On a terminal the output is indented for reading; piped it is
// one compact line per revision, ready for eww or waybar custom modules.
func runListenMode(ctx context.Context, eng *engine.Engine, tty bool) error {
	frames := make(chan revisionFrame, 64)
	unsubscribe := eng.Store().Subscribe(func(s state.Snapshot, rev uint64) {
		select {
		case frames <- revisionFrame{Revision: rev, Snapshot: s}:
		case <-ctx.Done():
		}
	})
	defer unsubscribe()

	enc := json.NewEncoder(os.Stdout)
	if tty {
		enc.SetIndent("", "  ")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-frames:
			if err := enc.Encode(f); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
		}
	}
}

// runOneshotMode waits for each enabled source to report once, prints a
// single snapshot, and exits. A source that cannot connect within the wait
// window shows up as absent from health rather than blocking forever.
func runOneshotMode(ctx context.Context, cfg *config.Config, eng *engine.Engine) error {
	want := []event.Domain{event.DomainSway}
	if cfg.Power.Enabled {
		want = append(want, event.DomainPower)
	}
	if cfg.Volume.Enabled {
		want = append(want, event.DomainVolume)
	}
	if cfg.Stats.Enabled {
		want = append(want, event.DomainStats)
	}
	waitForSources(ctx, eng, want)

	enc := json.NewEncoder(os.Stdout)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(revisionFrame{Revision: eng.Revision(), Snapshot: eng.Snapshot()})
}

// waitForSources blocks until every domain in want has reported liveness at
// least once, the wait window expires, or ctx is cancelled.
func waitForSources(ctx context.Context, eng *engine.Engine, want []event.Domain) {
	changes := make(chan struct{}, 1)
	unsubscribe := eng.Store().Subscribe(func(state.Snapshot, uint64) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	deadline := time.After(oneshotWait)
	for {
		snap := eng.Snapshot()
		all := true
		for _, d := range want {
			if _, ok := snap.Health[d]; !ok {
				all = false
				break
			}
		}
		if all {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-changes:
		}
	}
}

func ensureLogDir(logFile string) error {
	dir := filepath.Dir(logFile)
	return os.MkdirAll(dir, 0o755)
}
