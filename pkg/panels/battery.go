package panels

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// Battery glyphs by charge decile, 0-9% through full, plus the charging
// and alert variants.
var batGlyphs = [11]string{
	"\U000F008E", // 󰂎
	"\U000F007A", // 󰁺
	"\U000F007B", // 󰁻
	"\U000F007C", // 󰁼
	"\U000F007D", // 󰁽
	"\U000F007E", // 󰁾
	"\U000F007F", // 󰁿
	"\U000F0080", // 󰂀
	"\U000F0081", // 󰂁
	"\U000F0082", // 󰂂
	"\U000F0079", // 󰁹
}

const (
	batGlyphCharging = "\U000F0084" // 󰂄
	batGlyphAlert    = "\U000F0083" // 󰂃
)

// BatteryPanel renders the battery glyph, a charge bar, the percent, and
// the supply state. Below the critical threshold while discharging, the
// row switches to the alert glyph and the error color; the root model
// additionally raises the full-width banner.
type BatteryPanel struct {
	styles          theme.Styles
	bar             progress.Model
	critBar         progress.Model
	criticalPercent int

	snap state.Snapshot
	seen bool
}

// NewBattery creates the power panel. criticalPercent is the discharge
// level below which the reading renders as critical.
func NewBattery(th theme.Theme, criticalPercent int) *BatteryPanel {
	return &BatteryPanel{
		styles:          th.Styles(),
		bar:             progress.New(progress.WithSolidFill(th.GaugeFilled), progress.WithoutPercentage()),
		critBar:         progress.New(progress.WithSolidFill(th.GaugeCrit), progress.WithoutPercentage()),
		criticalPercent: criticalPercent,
	}
}

// ID returns the unique identifier for this panel.
func (w *BatteryPanel) ID() string {
	return "battery"
}

// Title returns the display name for this panel.
func (w *BatteryPanel) Title() string {
	return "Battery"
}

// MinSize returns the minimum width and height this panel requires.
func (w *BatteryPanel) MinSize() (int, int) {
	return 24, 1
}

// Update stores the latest snapshot.
func (w *BatteryPanel) Update(msg tea.Msg) tea.Cmd {
	if ev, ok := msg.(panel.StateEvent); ok {
		w.snap = ev.Snapshot
		w.seen = true
	}
	return nil
}

// HandleKey is a no-op for the battery panel.
func (w *BatteryPanel) HandleKey(_ tea.KeyMsg) tea.Cmd {
	return nil
}

// View renders the battery row.
func (w *BatteryPanel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	p := w.snap.Power
	if !w.seen || !p.Present {
		return pnCenterMessage(w.styles.Dim.Render("No battery"), width, height)
	}

	critical := p.Critical(w.criticalPercent)

	glyph := batGlyph(p)
	style := w.styles.Text
	if critical {
		style = w.styles.Error
	}

	supply := ""
	if p.OnAC {
		supply = " AC"
	}
	label := fmt.Sprintf("%3d%%%s", p.Percent, supply)

	iconW := components.VisibleLen(glyph)
	barW := width - iconW - 1 - components.VisibleLen(label) - 1
	line := style.Render(glyph + " " + label)
	if barW >= 4 {
		bar := w.bar
		if critical {
			bar = w.critBar
		}
		bar.Width = barW
		line = style.Render(glyph) + " " + bar.ViewAs(float64(p.Percent)/100.0) + " " + style.Render(label)
	}
	return pnFitLines([]string{line}, width, height)
}

// batGlyph picks the battery glyph for the current reading.
func batGlyph(p state.PowerState) string {
	if p.Charging {
		return batGlyphCharging
	}
	if p.Percent <= 5 {
		return batGlyphAlert
	}
	idx := p.Percent / 10
	if idx < 0 {
		idx = 0
	}
	if idx > 10 {
		idx = 10
	}
	return batGlyphs[idx]
}

// compile-time check that BatteryPanel implements panel.Panel.
var _ panel.Panel = (*BatteryPanel)(nil)
