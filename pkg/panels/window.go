package panels

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// WindowPanel shows the title of the window on the focused workspace,
// truncated to the panel width, with the application id underneath.
type WindowPanel struct {
	styles theme.Styles
	snap   state.Snapshot
	seen   bool
}

// NewWindow creates the focused-window panel.
func NewWindow(th theme.Theme) *WindowPanel {
	return &WindowPanel{styles: th.Styles()}
}

// ID returns the unique identifier for this panel.
func (w *WindowPanel) ID() string {
	return "window"
}

// Title returns the display name for this panel.
func (w *WindowPanel) Title() string {
	return "Window"
}

// MinSize returns the minimum width and height this panel requires.
func (w *WindowPanel) MinSize() (int, int) {
	return 20, 1
}

// Update stores the latest snapshot.
func (w *WindowPanel) Update(msg tea.Msg) tea.Cmd {
	if ev, ok := msg.(panel.StateEvent); ok {
		w.snap = ev.Snapshot
		w.seen = true
	}
	return nil
}

// HandleKey is a no-op for the window panel.
func (w *WindowPanel) HandleKey(_ tea.KeyMsg) tea.Cmd {
	return nil
}

// View renders the focused window title and app id.
func (w *WindowPanel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	win := w.snap.FocusedWindow
	if !w.seen || win == nil {
		return pnCenterMessage(w.styles.Dim.Render("No focused window"), width, height)
	}

	title := win.Title
	if title == "" {
		title = "(untitled)"
	}
	lines := []string{w.styles.Text.Render(components.TruncateWithTail(title, width, "…"))}
	if win.AppID != "" && height > 1 {
		lines = append(lines, w.styles.Dim.Render(components.Truncate(win.AppID, width)))
	}
	return pnFitLines(lines, width, height)
}

// compile-time check that WindowPanel implements panel.Panel.
var _ panel.Panel = (*WindowPanel)(nil)
