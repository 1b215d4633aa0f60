package panels

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// Volume level buckets for the sink icon.
const (
	volLowMax    = 25
	volMediumMax = 50

	// volStep is the level delta applied by the +/- keys.
	volStep = 5

	// volFlashFor is how long a change highlight stays visible. Ticks
	// clear it, so the effective lifetime rounds up to the next tick.
	volFlashFor = time.Second
)

// Sink icons by bucket, plus the microphone pair for the source row.
const (
	volIconMuted  = "\U000F075F" // 󰝟
	volIconLow    = "\U000F057F" // 󰕿
	volIconMedium = "\U000F0580" // 󰖀
	volIconHigh   = "\U000F057E" // 󰕾
	volIconMic    = "\U000F036C" // 󰍬
	volIconMicOff = "\U000F036D" // 󰍭
)

// VolumePanel renders one row per mixer channel with an icon, a level
// bar, and the percent label. A just-changed channel is highlighted for
// about a second. Keys adjust the sink: +/- step the level, m toggles
// mute. Each row is a bubblezone click target that toggles its channel.
type VolumePanel struct {
	sink   panel.Sink
	zones  *zone.Manager
	styles theme.Styles
	bar    progress.Model

	snap state.Snapshot
	seen bool

	flashCh    event.Channel
	flashUntil time.Time
}

// NewVolume creates the mixer panel.
func NewVolume(sink panel.Sink, zones *zone.Manager, th theme.Theme) *VolumePanel {
	return &VolumePanel{
		sink:   sink,
		zones:  zones,
		styles: th.Styles(),
		bar:    progress.New(progress.WithSolidFill(th.GaugeFilled), progress.WithoutPercentage()),
	}
}

// ID returns the unique identifier for this panel.
func (w *VolumePanel) ID() string {
	return "volume"
}

// Title returns the display name for this panel.
func (w *VolumePanel) Title() string {
	return "Volume"
}

// MinSize returns the minimum width and height this panel requires.
func (w *VolumePanel) MinSize() (int, int) {
	return 24, 2
}

// Update stores the latest snapshot, arming the change highlight when a
// channel's reading moved, and expires the highlight on ticks.
func (w *VolumePanel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case panel.StateEvent:
		if w.seen {
			for ch, vs := range msg.Snapshot.Volume {
				if prev, ok := w.snap.Volume[ch]; !ok || prev != vs {
					w.flashCh = ch
					w.flashUntil = time.Now().Add(volFlashFor)
				}
			}
		}
		w.snap = msg.Snapshot
		w.seen = true
	case panel.TickEvent:
		if !w.flashUntil.IsZero() && msg.Time.After(w.flashUntil) {
			w.flashCh = ""
			w.flashUntil = time.Time{}
		}
	}
	return nil
}

// HandleKey adjusts the sink channel: '+'/'=' raise the level by 5,
// '-'/'_' lower it, 'm' toggles mute.
func (w *VolumePanel) HandleKey(key tea.KeyMsg) tea.Cmd {
	vs, ok := w.snap.Volume[event.ChannelSink]
	if !ok {
		return nil
	}
	switch key.String() {
	case "+", "=":
		return panel.SubmitCmd(w.sink, &command.SetVolume{Channel: event.ChannelSink, Level: vs.Level + volStep})
	case "-", "_":
		return panel.SubmitCmd(w.sink, &command.SetVolume{Channel: event.ChannelSink, Level: vs.Level - volStep})
	case "m":
		return panel.SubmitCmd(w.sink, &command.ToggleMute{Channel: event.ChannelSink})
	}
	return nil
}

// View renders the channel rows, sink first.
func (w *VolumePanel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if !w.seen || len(w.snap.Volume) == 0 {
		return pnCenterMessage(w.styles.Dim.Render("No mixer"), width, height)
	}

	var lines []string
	for _, ch := range []event.Channel{event.ChannelSink, event.ChannelSource} {
		vs, ok := w.snap.Volume[ch]
		if !ok {
			continue
		}
		row := w.volRow(ch, vs, width)
		lines = append(lines, w.zones.Mark(ZoneVolume(ch), row))
	}
	return pnFitLines(lines, width, height)
}

// volRow renders one channel as "icon bar label".
func (w *VolumePanel) volRow(ch event.Channel, vs state.VolumeState, width int) string {
	icon := volIcon(ch, vs)

	label := fmt.Sprintf("%3d%%", vs.Level)
	if vs.Muted {
		label = "mute"
	}
	style := w.styles.Text
	if vs.Muted {
		style = w.styles.Dim
	}
	if ch == w.flashCh {
		style = w.styles.Warn.Bold(true)
	}

	iconW := components.VisibleLen(icon)
	barW := width - iconW - 1 - len("mute") - 1
	if barW < 4 {
		return style.Render(icon + " " + label)
	}

	bar := w.bar
	bar.Width = barW
	return style.Render(icon) + " " + bar.ViewAs(float64(vs.Level)/100.0) + " " + style.Render(label)
}

// volIcon picks the channel glyph for the current reading.
func volIcon(ch event.Channel, vs state.VolumeState) string {
	if ch == event.ChannelSource {
		if vs.Muted {
			return volIconMicOff
		}
		return volIconMic
	}
	switch {
	case vs.Muted:
		return volIconMuted
	case vs.Level <= volLowMax:
		return volIconLow
	case vs.Level <= volMediumMax:
		return volIconMedium
	default:
		return volIconHigh
	}
}

// compile-time check that VolumePanel implements panel.Panel.
var _ panel.Panel = (*VolumePanel)(nil)
