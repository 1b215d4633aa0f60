package panels

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// WorkspacesPanel renders one pill per workspace in compositor order.
// The focused pill is highlighted, urgent pills are flagged, and every
// pill is marked as a bubblezone click target that focuses its
// workspace. Digit keys 1-9 and 0 (for 10) jump directly.
type WorkspacesPanel struct {
	sink   panel.Sink
	zones  *zone.Manager
	styles theme.Styles
	snap   state.Snapshot
	seen   bool
}

// NewWorkspaces creates the workspace strip panel.
func NewWorkspaces(sink panel.Sink, zones *zone.Manager, th theme.Theme) *WorkspacesPanel {
	return &WorkspacesPanel{
		sink:   sink,
		zones:  zones,
		styles: th.Styles(),
	}
}

// ID returns the unique identifier for this panel.
func (w *WorkspacesPanel) ID() string {
	return "workspaces"
}

// Title returns the display name for this panel.
func (w *WorkspacesPanel) Title() string {
	return "Workspaces"
}

// MinSize returns the minimum width and height this panel requires.
func (w *WorkspacesPanel) MinSize() (int, int) {
	return 20, 1
}

// Update stores the latest snapshot.
func (w *WorkspacesPanel) Update(msg tea.Msg) tea.Cmd {
	if ev, ok := msg.(panel.StateEvent); ok {
		w.snap = ev.Snapshot
		w.seen = true
	}
	return nil
}

// HandleKey jumps to a workspace by number: keys 1-9 focus workspaces
// 1-9, key 0 focuses workspace 10.
func (w *WorkspacesPanel) HandleKey(key tea.KeyMsg) tea.Cmd {
	s := key.String()
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return nil
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	if n == 0 {
		n = 10
	}
	return panel.SubmitCmd(w.sink, &command.FocusWorkspace{ID: n})
}

// View renders the pill strip. Pills that would overflow the width are
// dropped whole rather than cut mid-pill, so the click zones stay intact.
func (w *WorkspacesPanel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if !w.seen || len(w.snap.Workspaces) == 0 {
		return pnCenterMessage(w.styles.Dim.Render("No workspaces"), width, height)
	}

	var strip strings.Builder
	used := 0
	for i, ws := range w.snap.Workspaces {
		style := w.styles.Pill
		switch {
		case ws.Focused:
			style = w.styles.PillFocused
		case ws.Urgent:
			style = w.styles.PillUrgent
		}

		pill := style.Render(ws.Name)
		vis := components.VisibleLen(pill)
		sep := 0
		if i > 0 {
			sep = 1
		}
		if used+sep+vis > width {
			break
		}
		if sep == 1 {
			strip.WriteByte(' ')
		}
		strip.WriteString(w.zones.Mark(ZoneWorkspace(ws.ID), pill))
		used += sep + vis
	}

	return pnFitLines([]string{strip.String()}, width, height)
}

// compile-time check that WorkspacesPanel implements panel.Panel.
var _ panel.Panel = (*WorkspacesPanel)(nil)
