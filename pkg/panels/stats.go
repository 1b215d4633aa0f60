package panels

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// statMaxHistory bounds the load-average rolling buffer.
const statMaxHistory = 60

// Memory meter thresholds (ratio 0-1).
const (
	statMemWarn = 0.7
	statMemCrit = 0.9
)

// StatsPanel renders the load averages with a one-minute history
// sparkline and a memory usage meter.
type StatsPanel struct {
	styles theme.Styles
	spark  *components.Sparkline
	gauge  *components.Gauge

	snap    state.Snapshot
	seen    bool
	history []float64
}

// NewStats creates the system stats panel.
func NewStats(th theme.Theme) *StatsPanel {
	sparkStyle := components.DefaultSparklineStyle()
	sparkStyle.Color = th.ChartLine

	gaugeStyle := components.DefaultGaugeStyle()
	gaugeStyle.Label = "mem"
	gaugeStyle.FilledColor = th.GaugeFilled
	gaugeStyle.EmptyColor = th.GaugeEmpty
	gaugeStyle.WarningThreshold = statMemWarn
	gaugeStyle.CriticalThreshold = statMemCrit
	gaugeStyle.WarningColor = th.GaugeWarn
	gaugeStyle.CriticalColor = th.GaugeCrit

	return &StatsPanel{
		styles: th.Styles(),
		spark:  components.NewSparkline(sparkStyle),
		gauge:  components.NewGauge(gaugeStyle),
	}
}

// ID returns the unique identifier for this panel.
func (w *StatsPanel) ID() string {
	return "stats"
}

// Title returns the display name for this panel.
func (w *StatsPanel) Title() string {
	return "System"
}

// MinSize returns the minimum width and height this panel requires.
func (w *StatsPanel) MinSize() (int, int) {
	return 25, 3
}

// Update stores the latest snapshot and extends the load history when
// the sample actually moved.
func (w *StatsPanel) Update(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(panel.StateEvent)
	if !ok {
		return nil
	}
	if ev.Snapshot.Stats != w.snap.Stats || !w.seen {
		w.history = append(w.history, ev.Snapshot.Stats.Load1)
		if len(w.history) > statMaxHistory {
			w.history = w.history[len(w.history)-statMaxHistory:]
		}
	}
	w.snap = ev.Snapshot
	w.seen = true
	return nil
}

// HandleKey is a no-op for the stats panel.
func (w *StatsPanel) HandleKey(_ tea.KeyMsg) tea.Cmd {
	return nil
}

// View renders load averages, the load sparkline, and the memory meter.
func (w *StatsPanel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if !w.seen {
		return pnCenterMessage(w.styles.Dim.Render("No data"), width, height)
	}
	s := w.snap.Stats

	loadLine := fmt.Sprintf("Load: %.2f / %.2f / %.2f", s.Load1, s.Load5, s.Load15)
	lines := []string{w.styles.Text.Render(loadLine)}

	if height > 2 {
		lines = append(lines, w.spark.Render(w.history, width))
	}
	lines = append(lines, w.gauge.Render(s.MemUsedPercent, 100.0, width))

	return pnFitLines(lines, width, height)
}

// compile-time check that StatsPanel implements panel.Panel.
var _ panel.Panel = (*StatsPanel)(nil)
