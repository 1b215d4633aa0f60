package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/swaypulse/pkg/engine"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panels"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// Options configure the interactive dashboard.
type Options struct {
	Theme           string
	CriticalPercent int
}

// Run starts the dashboard over a running engine and blocks until the
// user quits or ctx is canceled.
//
// Snapshots reach the UI exclusively through the store observer below:
// it redispatches every revision into the Bubbletea loop via
// Program.Send, so panels always render on the loop's goroutine.
func Run(ctx context.Context, eng *engine.Engine, opts Options) error {
	th := theme.Adapt(theme.Get(opts.Theme), tuiColorDepth())

	zones := zone.New()
	defer zones.Close()

	m := New(eng, panels.Default(eng, zones, th, opts.CriticalPercent), th, zones, opts.CriticalPercent)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	unsubscribe := eng.Store().Subscribe(func(s state.Snapshot, rev uint64) {
		p.Send(panel.StateEvent{Snapshot: s, Revision: rev})
	})
	defer unsubscribe()

	// Prime the UI with whatever the store already holds. Send blocks
	// until the loop starts, so it must not run on this goroutine.
	go p.Send(panel.StateEvent{Snapshot: eng.Snapshot(), Revision: eng.Revision()})

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil // engine shutdown, not a UI failure
	}
	return err
}

// tuiColorDepth maps the terminal's termenv profile to a color depth in
// bits for theme adaptation.
func tuiColorDepth() int {
	switch termenv.ColorProfile() {
	case termenv.TrueColor:
		return 24
	case termenv.ANSI256:
		return 8
	case termenv.ANSI:
		return 4
	default:
		return 0
	}
}
