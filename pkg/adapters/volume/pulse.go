package volume

import (
	"context"
	"fmt"
	"math"

	"mrogalski.eu/go/pulseaudio"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// PulseMixer talks the PulseAudio native protocol and pushes change
// notifications. It controls the default sink; capture channels are not
// exposed by the protocol client, so source commands are rejected.
type PulseMixer struct {
	client  *pulseaudio.Client
	updates <-chan struct{}
}

// ConnectPulse dials the PulseAudio server. An empty address uses the
// default socket under XDG_RUNTIME_DIR.
func ConnectPulse(addr string) (Mixer, error) {
	var client *pulseaudio.Client
	var err error
	if addr == "" {
		client, err = pulseaudio.NewClient()
	} else {
		client, err = pulseaudio.NewClient(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	updates, err := client.Updates()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("subscribe to pulse updates: %w", err)
	}
	return &PulseMixer{client: client, updates: updates}, nil
}

// Read reports the default sink.
func (m *PulseMixer) Read(ctx context.Context) ([]event.VolumeChanged, error) {
	raw, err := m.client.Volume()
	if err != nil {
		return nil, fmt.Errorf("query sink volume: %w", err)
	}
	muted, err := m.client.Mute()
	if err != nil {
		return nil, fmt.Errorf("query sink mute: %w", err)
	}

	return []event.VolumeChanged{{
		Channel: event.ChannelSink,
		Level:   clampLevel(int(math.Round(float64(raw) * 100))),
		Muted:   muted,
	}}, nil
}

// Updates ticks on server-side sink changes.
func (m *PulseMixer) Updates() <-chan struct{} { return m.updates }

// SetVolume sets the default sink level.
func (m *PulseMixer) SetVolume(ctx context.Context, ch event.Channel, level int) error {
	if ch != event.ChannelSink {
		return fmt.Errorf("%s: %w", ch, ErrUnsupportedChannel)
	}
	if err := m.client.SetVolume(float32(clampLevel(level)) / 100); err != nil {
		return fmt.Errorf("set sink volume: %w", err)
	}
	return nil
}

// ToggleMute flips the default sink mute switch.
func (m *PulseMixer) ToggleMute(ctx context.Context, ch event.Channel) error {
	if ch != event.ChannelSink {
		return fmt.Errorf("%s: %w", ch, ErrUnsupportedChannel)
	}
	if _, err := m.client.ToggleMute(); err != nil {
		return fmt.Errorf("toggle sink mute: %w", err)
	}
	return nil
}

// Close drops the server connection; the update stream ends with it.
func (m *PulseMixer) Close() error {
	m.client.Close()
	return nil
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
