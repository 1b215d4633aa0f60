package volume

import (
	"context"
	"fmt"

	sysvolume "github.com/itchyny/volume-go"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// SystemMixer drives the OS mixer through external tooling (amixer and
// friends). It cannot push changes, so it is poll-only, and it only
// addresses the primary output.
type SystemMixer struct{}

// ConnectSystem returns the system mixer. There is no connection to hold;
// every call shells out.
func ConnectSystem() (Mixer, error) {
	if _, err := sysvolume.GetVolume(); err != nil {
		return nil, fmt.Errorf("probe system mixer: %w", err)
	}
	return SystemMixer{}, nil
}

// Read reports the primary output channel.
func (SystemMixer) Read(ctx context.Context) ([]event.VolumeChanged, error) {
	level, err := sysvolume.GetVolume()
	if err != nil {
		return nil, fmt.Errorf("query system volume: %w", err)
	}
	muted, err := sysvolume.GetMuted()
	if err != nil {
		return nil, fmt.Errorf("query system mute: %w", err)
	}
	return []event.VolumeChanged{{
		Channel: event.ChannelSink,
		Level:   clampLevel(level),
		Muted:   muted,
	}}, nil
}

// Updates returns nil: this backend cannot push.
func (SystemMixer) Updates() <-chan struct{} { return nil }

// SetVolume sets the primary output level.
func (SystemMixer) SetVolume(ctx context.Context, ch event.Channel, level int) error {
	if ch != event.ChannelSink {
		return fmt.Errorf("%s: %w", ch, ErrUnsupportedChannel)
	}
	if err := sysvolume.SetVolume(clampLevel(level)); err != nil {
		return fmt.Errorf("set system volume: %w", err)
	}
	return nil
}

// ToggleMute flips the primary output mute switch.
func (SystemMixer) ToggleMute(ctx context.Context, ch event.Channel) error {
	if ch != event.ChannelSink {
		return fmt.Errorf("%s: %w", ch, ErrUnsupportedChannel)
	}
	muted, err := sysvolume.GetMuted()
	if err != nil {
		return fmt.Errorf("query system mute: %w", err)
	}
	if muted {
		err = sysvolume.Unmute()
	} else {
		err = sysvolume.Mute()
	}
	if err != nil {
		return fmt.Errorf("toggle system mute: %w", err)
	}
	return nil
}

// Close is a no-op; nothing is held open.
func (SystemMixer) Close() error { return nil }
