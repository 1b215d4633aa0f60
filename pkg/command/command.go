// Package command defines user-initiated intents flowing from the UI back
// to the source adapters.
//
// Commands never mutate view state directly. Their effect, if any, is
// observed later through the normal event path: the adapter executes the
// command against the external system, the system reports the change, and
// the adapter emits the corresponding event.
package command

import (
	"fmt"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// Command is a validated user intent routed to exactly one adapter.
type Command interface {
	Domain() event.Domain
	// Validate normalizes the command in place and reports whether its
	// shape is acceptable. Called by the sink before routing.
	Validate() error
	isCommand()
}

// SetVolume sets the level of one mixer channel. Level outside [0,100] is
// clamped, not rejected.
type SetVolume struct {
	Channel event.Channel
	Level   int
}

func (SetVolume) Domain() event.Domain { return event.DomainVolume }
func (SetVolume) isCommand()           {}

func (c *SetVolume) Validate() error {
	if err := checkChannel(c.Channel); err != nil {
		return err
	}
	if c.Level < 0 {
		c.Level = 0
	}
	if c.Level > 100 {
		c.Level = 100
	}
	return nil
}

// ToggleMute flips the mute flag of one mixer channel.
type ToggleMute struct {
	Channel event.Channel
}

func (ToggleMute) Domain() event.Domain { return event.DomainVolume }
func (ToggleMute) isCommand()           {}

func (c *ToggleMute) Validate() error { return checkChannel(c.Channel) }

// FocusWorkspace switches the compositor to the workspace with the given
// number.
type FocusWorkspace struct {
	ID int64
}

func (FocusWorkspace) Domain() event.Domain { return event.DomainSway }
func (FocusWorkspace) isCommand()           {}

func (c *FocusWorkspace) Validate() error {
	if c.ID < 0 {
		return fmt.Errorf("workspace id %d out of range", c.ID)
	}
	return nil
}

// SwitchLayout activates the keyboard layout group at Index on all
// keyboards.
type SwitchLayout struct {
	Index int
}

func (SwitchLayout) Domain() event.Domain { return event.DomainSway }
func (SwitchLayout) isCommand()           {}

func (c *SwitchLayout) Validate() error {
	if c.Index < 0 {
		return fmt.Errorf("layout index %d out of range", c.Index)
	}
	return nil
}

func checkChannel(ch event.Channel) error {
	switch ch {
	case event.ChannelSink, event.ChannelSource:
		return nil
	default:
		return fmt.Errorf("unknown channel %q", ch)
	}
}
