package panels

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// LayoutPanel shows the keyboard layout group list with the active one
// highlighted. The 'l' key, or a click anywhere on the panel, cycles to
// the next group.
type LayoutPanel struct {
	sink   panel.Sink
	zones  *zone.Manager
	styles theme.Styles
	snap   state.Snapshot
	seen   bool
}

// NewLayout creates the keyboard layout panel.
func NewLayout(sink panel.Sink, zones *zone.Manager, th theme.Theme) *LayoutPanel {
	return &LayoutPanel{
		sink:   sink,
		zones:  zones,
		styles: th.Styles(),
	}
}

// ID returns the unique identifier for this panel.
func (w *LayoutPanel) ID() string {
	return "layout"
}

// Title returns the display name for this panel.
func (w *LayoutPanel) Title() string {
	return "Layout"
}

// MinSize returns the minimum width and height this panel requires.
func (w *LayoutPanel) MinSize() (int, int) {
	return 16, 1
}

// Update stores the latest snapshot.
func (w *LayoutPanel) Update(msg tea.Msg) tea.Cmd {
	if ev, ok := msg.(panel.StateEvent); ok {
		w.snap = ev.Snapshot
		w.seen = true
	}
	return nil
}

// HandleKey cycles to the next layout group on 'l'.
func (w *LayoutPanel) HandleKey(key tea.KeyMsg) tea.Cmd {
	if key.String() != "l" {
		return nil
	}
	return w.CycleCmd()
}

// CycleCmd returns a Cmd that switches to the next layout group, or nil
// when no groups are known. Clicks on the panel's zone use it too.
func (w *LayoutPanel) CycleCmd() tea.Cmd {
	names := w.snap.Layout.Names
	if len(names) == 0 {
		return nil
	}
	next := (w.snap.Layout.Active + 1) % len(names)
	return panel.SubmitCmd(w.sink, &command.SwitchLayout{Index: next})
}

// View renders the group list, active group highlighted.
func (w *LayoutPanel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	names := w.snap.Layout.Names
	if !w.seen || len(names) == 0 {
		return pnCenterMessage(w.styles.Dim.Render("No layouts"), width, height)
	}

	parts := make([]string, 0, len(names))
	for i, name := range names {
		if i == w.snap.Layout.Active {
			parts = append(parts, w.styles.Title.Render(name))
		} else {
			parts = append(parts, w.styles.Dim.Render(name))
		}
	}
	// Truncate before marking so the click zone's end marker survives.
	line := strings.Join(parts, "  ")
	if components.VisibleLen(line) > width {
		line = components.Truncate(line, width)
	}
	line = w.zones.Mark(ZoneLayout, line)
	return pnFitLines([]string{line}, width, height)
}

// compile-time check that LayoutPanel implements panel.Panel.
var _ panel.Panel = (*LayoutPanel)(nil)
