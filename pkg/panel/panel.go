// Package panel defines the Bubbletea-facing contract between the status
// shell's UI loop and its panels. It carries the event types that flow
// through the Elm-architecture update cycle and the Panel interface that
// every rendered section of the dashboard implements.
//
// Panels never touch the engine directly: state arrives as StateEvent
// messages redispatched from the store observer, and commands leave as
// tea.Cmds built with SubmitCmd.
package panel

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
)

// Panel is one rendered section of the dashboard. Implementations keep
// whatever per-panel state they need (histories, flash deadlines) and
// derive everything else from the snapshot carried by StateEvent.
type Panel interface {
	// ID returns the panel's unique identifier, used for focus routing.
	ID() string

	// Title returns the display title for the panel's border.
	Title() string

	// MinSize returns the minimum width and height the panel needs to
	// render something useful.
	MinSize() (int, int)

	// Update handles messages from the Bubbletea loop. Every panel
	// receives every StateEvent and TickEvent.
	Update(msg tea.Msg) tea.Cmd

	// HandleKey processes a key event. Only the focused panel receives
	// key events that the root model did not consume.
	HandleKey(key tea.KeyMsg) tea.Cmd

	// View renders the panel's interior at the given dimensions.
	View(width, height int) string
}

// Sink accepts desktop commands for delivery to their source adapter.
// The engine satisfies it.
type Sink interface {
	Submit(cmd command.Command) error
}

// StateEvent carries a fresh store snapshot into the Bubbletea loop.
// The program's store observer sends one per revision via Program.Send.
type StateEvent struct {
	Snapshot state.Snapshot
	Revision uint64
}

// TickEvent is sent periodically by the render ticker to trigger UI
// refresh, flash expiry, and staleness checks.
type TickEvent struct {
	Time time.Time
}

// CommandResultEvent reports the outcome of a submitted command back to
// the update loop. Err is non-nil when validation failed or the engine
// queue was full.
type CommandResultEvent struct {
	Cmd       command.Command
	Err       error
	Timestamp time.Time
}

// TickCmd returns a Cmd that sends a TickEvent after the given duration.
// This drives the periodic UI refresh cycle.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Time: t}
	})
}

// SubmitCmd returns a Cmd that submits cmd to the sink and delivers the
// outcome as a CommandResultEvent.
//
// Usage:
//
//	return panel.SubmitCmd(w.sink, &command.ToggleMute{Channel: event.ChannelSink})
func SubmitCmd(sink Sink, cmd command.Command) tea.Cmd {
	return func() tea.Msg {
		err := sink.Submit(cmd)
		return CommandResultEvent{
			Cmd:       cmd,
			Err:       err,
			Timestamp: time.Now(),
		}
	}
}
