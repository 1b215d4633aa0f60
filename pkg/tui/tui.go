// Package tui implements the root Bubbletea model for the swaypulse
// dashboard. It owns focus routing, global keys, mouse hit-testing via
// bubblezone, and the frame composition that stacks the panels.
//
// State flows in one direction: the engine's store observer redispatches
// every new snapshot into the program with Program.Send, panels render
// from the snapshot they last saw, and user intent leaves through
// panel.SubmitCmd. The model never reads the store directly.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panels"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

const (
	// tuiTickInterval drives redraws, flash expiry, and staleness checks.
	tuiTickInterval = 500 * time.Millisecond

	// tuiStatusFor is how long a command error stays in the footer.
	tuiStatusFor = 5 * time.Second

	// tuiFlashFor is the visible lifetime of the volume flash.
	tuiFlashFor = time.Second

	// tuiWheelStep is the level delta for a mouse wheel notch on the
	// volume panel.
	tuiWheelStep = 5
)

// Backend is the engine surface the UI needs: command submission plus
// the bus counters shown in the debug footer.
type Backend interface {
	panel.Sink
	Drops() uint64
	Pending() int
}

// Model is the root Bubbletea model.
type Model struct {
	backend Backend
	panels  []panel.Panel
	zones   *zone.Manager
	th      theme.Theme
	styles  theme.Styles

	criticalPercent int

	snap state.Snapshot
	rev  uint64

	width   int
	height  int
	ready   bool
	focused int
	help    bool

	statusMsg   string
	statusUntil time.Time
	flash       string
	flashUntil  time.Time
}

// New creates the root model over the given panel stack. The zone
// manager must be the same one the clickable panels mark with.
func New(backend Backend, ps []panel.Panel, th theme.Theme, zones *zone.Manager, criticalPercent int) Model {
	return Model{
		backend:         backend,
		panels:          ps,
		zones:           zones,
		th:              th,
		styles:          th.Styles(),
		criticalPercent: criticalPercent,
	}
}

// Init starts the render ticker.
func (m Model) Init() tea.Cmd {
	return panel.TickCmd(tuiTickInterval)
}

// Focused returns the index of the focused panel.
func (m Model) Focused() int { return m.focused }

// Ready reports whether the first WindowSizeMsg has arrived.
func (m Model) Ready() bool { return m.ready }

// Width returns the terminal width.
func (m Model) Width() int { return m.width }

// Height returns the terminal height.
func (m Model) Height() int { return m.height }

// ShowHelp reports whether the help page is visible.
func (m Model) ShowHelp() bool { return m.help }

// Revision returns the store revision of the rendered snapshot.
func (m Model) Revision() uint64 { return m.rev }

// StatusText returns the transient footer message, if any.
func (m Model) StatusText() string { return m.statusMsg }

// Update handles one message from the Bubbletea loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case panel.StateEvent:
		m.armFlash(msg.Snapshot)
		m.snap = msg.Snapshot
		m.rev = msg.Revision
		return m, m.broadcast(msg)

	case panel.TickEvent:
		if m.statusMsg != "" && msg.Time.After(m.statusUntil) {
			m.statusMsg = ""
		}
		if m.flash != "" && msg.Time.After(m.flashUntil) {
			m.flash = ""
		}
		cmd := m.broadcast(msg)
		return m, tea.Batch(cmd, panel.TickCmd(tuiTickInterval))

	case panel.CommandResultEvent:
		if msg.Err != nil {
			m.statusMsg = "err: " + msg.Err.Error()
			m.statusUntil = msg.Timestamp.Add(tuiStatusFor)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}

	return m, nil
}

// handleKey consumes the global keys and forwards the rest to the
// focused panel.
func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		if len(m.panels) > 0 {
			m.focused = (m.focused + 1) % len(m.panels)
		}
		return m, nil

	case "shift+tab":
		if len(m.panels) > 0 {
			m.focused = (m.focused - 1 + len(m.panels)) % len(m.panels)
		}
		return m, nil

	case "?":
		m.help = !m.help
		return m, nil

	case "esc":
		m.help = false
		return m, nil
	}

	if m.focused >= 0 && m.focused < len(m.panels) {
		return m, m.panels[m.focused].HandleKey(key)
	}
	return m, nil
}

// handleMouse hit-tests the click zones the panels marked. Left click
// focuses a workspace, toggles a channel's mute, or cycles the layout;
// the wheel steps the volume of the row under the cursor.
func (m Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		return m.clickCmd(msg)
	case tea.MouseButtonWheelUp:
		return m.wheelCmd(msg, tuiWheelStep)
	case tea.MouseButtonWheelDown:
		return m.wheelCmd(msg, -tuiWheelStep)
	}
	return nil
}

// clickCmd resolves a left click against the marked zones.
func (m Model) clickCmd(msg tea.MouseMsg) tea.Cmd {
	for _, ws := range m.snap.Workspaces {
		if m.zones.Get(panels.ZoneWorkspace(ws.ID)).InBounds(msg) {
			return panel.SubmitCmd(m.backend, &command.FocusWorkspace{ID: ws.ID})
		}
	}
	for _, ch := range []event.Channel{event.ChannelSink, event.ChannelSource} {
		if _, ok := m.snap.Volume[ch]; !ok {
			continue
		}
		if m.zones.Get(panels.ZoneVolume(ch)).InBounds(msg) {
			return panel.SubmitCmd(m.backend, &command.ToggleMute{Channel: ch})
		}
	}
	if m.zones.Get(panels.ZoneLayout).InBounds(msg) {
		names := m.snap.Layout.Names
		if len(names) == 0 {
			return nil
		}
		next := (m.snap.Layout.Active + 1) % len(names)
		return panel.SubmitCmd(m.backend, &command.SwitchLayout{Index: next})
	}
	return nil
}

// wheelCmd adjusts the volume of the channel row under the cursor.
func (m Model) wheelCmd(msg tea.MouseMsg, delta int) tea.Cmd {
	for _, ch := range []event.Channel{event.ChannelSink, event.ChannelSource} {
		vs, ok := m.snap.Volume[ch]
		if !ok {
			continue
		}
		if m.zones.Get(panels.ZoneVolume(ch)).InBounds(msg) {
			return panel.SubmitCmd(m.backend, &command.SetVolume{Channel: ch, Level: vs.Level + delta})
		}
	}
	return nil
}

// broadcast forwards a message to every panel and batches any commands
// they return.
func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.panels {
		if cmd := p.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// armFlash raises the transient volume readout when a channel's reading
// moved between the previous and next snapshot.
func (m *Model) armFlash(next state.Snapshot) {
	if m.rev == 0 && len(m.snap.Volume) == 0 {
		return
	}
	for _, ch := range []event.Channel{event.ChannelSink, event.ChannelSource} {
		vs, ok := next.Volume[ch]
		if !ok {
			continue
		}
		prev, had := m.snap.Volume[ch]
		if had && prev == vs {
			continue
		}
		m.flash = tuiFlashText(ch, vs)
		m.flashUntil = time.Now().Add(tuiFlashFor)
	}
}

// View renders the full frame and registers the click zones.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.zones.Scan(tuiRenderFrame(m))
}

// compile-time check that Model satisfies tea.Model.
var _ tea.Model = Model{}
