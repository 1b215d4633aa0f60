package volume

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters"
	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMixer struct {
	mu       sync.Mutex
	readings []event.VolumeChanged
	readErr  error
	updates  chan struct{}
	sets     []event.VolumeChanged // SetVolume calls recorded as channel+level
	toggles  []event.Channel
	closed   bool
}

func newFakeMixer(readings ...event.VolumeChanged) *fakeMixer {
	return &fakeMixer{readings: readings, updates: make(chan struct{}, 1)}
}

func (f *fakeMixer) Read(ctx context.Context) ([]event.VolumeChanged, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]event.VolumeChanged, len(f.readings))
	copy(out, f.readings)
	return out, nil
}

func (f *fakeMixer) Updates() <-chan struct{} { return f.updates }

func (f *fakeMixer) SetVolume(ctx context.Context, ch event.Channel, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, event.VolumeChanged{Channel: ch, Level: level})
	return nil
}

func (f *fakeMixer) ToggleMute(ctx context.Context, ch event.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles = append(f.toggles, ch)
	return nil
}

func (f *fakeMixer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeMixer) set(readings ...event.VolumeChanged) {
	f.mu.Lock()
	f.readings = readings
	f.mu.Unlock()
}

func (f *fakeMixer) push() {
	select {
	case f.updates <- struct{}{}:
	default:
	}
}

type capturePub struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *capturePub) Publish(ev event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePub) snapshot() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *capturePub) waitCount(t *testing.T, n int) []event.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if evs := p.snapshot(); len(evs) >= n {
			return evs
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %v", n, p.snapshot())
	return nil
}

func startAdapter(t *testing.T, connect MixerFactory, poll time.Duration) (*Adapter, *capturePub) {
	t.Helper()
	a := New(Config{PollInterval: poll, ReconnectMin: time.Millisecond, ReconnectMax: 4 * time.Millisecond}, connect, discardLogger())
	pub := &capturePub{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Run(ctx, pub)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("adapter did not stop after cancel")
		}
	})
	return a, pub
}

func TestInitialReadingsPublishedPerChannel(t *testing.T) {
	mixer := newFakeMixer(
		event.VolumeChanged{Channel: event.ChannelSink, Level: 40},
		event.VolumeChanged{Channel: event.ChannelSource, Level: 80, Muted: true},
	)
	connect := func(ctx context.Context) (Mixer, error) { return mixer, nil }

	_, pub := startAdapter(t, connect, time.Hour)
	evs := pub.waitCount(t, 3)

	byChannel := map[event.Channel]event.VolumeChanged{}
	for _, ev := range evs[:2] {
		v, ok := ev.(event.VolumeChanged)
		if !ok {
			t.Fatalf("want volume readings first, got %#v", ev)
		}
		byChannel[v.Channel] = v
	}
	if byChannel[event.ChannelSink].Level != 40 || !byChannel[event.ChannelSource].Muted {
		t.Errorf("readings mapped wrong: %v", byChannel)
	}
	live, ok := evs[2].(event.LivenessChanged)
	if !ok || live.Source != event.DomainVolume || !live.Live {
		t.Fatalf("want liveness up last, got %#v", evs[2])
	}
}

func TestOnlyChangedChannelRepublished(t *testing.T) {
	mixer := newFakeMixer(
		event.VolumeChanged{Channel: event.ChannelSink, Level: 40},
		event.VolumeChanged{Channel: event.ChannelSource, Level: 80},
	)
	connect := func(ctx context.Context) (Mixer, error) { return mixer, nil }
	_, pub := startAdapter(t, connect, time.Hour)
	pub.waitCount(t, 3)

	mixer.set(
		event.VolumeChanged{Channel: event.ChannelSink, Level: 45},
		event.VolumeChanged{Channel: event.ChannelSource, Level: 80},
	)
	mixer.push()

	evs := pub.waitCount(t, 4)
	v, ok := evs[3].(event.VolumeChanged)
	if !ok || v.Channel != event.ChannelSink || v.Level != 45 {
		t.Fatalf("want sink change only, got %#v", evs[3])
	}

	// Identical push publishes nothing.
	mixer.push()
	time.Sleep(30 * time.Millisecond)
	if n := len(pub.snapshot()); n != 4 {
		t.Errorf("duplicate readings republished, count %d", n)
	}
}

func TestPollFloorWithoutPush(t *testing.T) {
	mixer := newFakeMixer(event.VolumeChanged{Channel: event.ChannelSink, Level: 10})
	connect := func(ctx context.Context) (Mixer, error) { return mixer, nil }
	_, pub := startAdapter(t, connect, 5*time.Millisecond)
	pub.waitCount(t, 2)

	mixer.set(event.VolumeChanged{Channel: event.ChannelSink, Level: 11, Muted: true})
	evs := pub.waitCount(t, 3)
	v, ok := evs[2].(event.VolumeChanged)
	if !ok || v.Level != 11 || !v.Muted {
		t.Fatalf("poll did not surface change, got %#v", evs[2])
	}
}

func TestMixerFailureFlagsLiveness(t *testing.T) {
	mixer := newFakeMixer(event.VolumeChanged{Channel: event.ChannelSink, Level: 30})
	connect := func(ctx context.Context) (Mixer, error) { return mixer, nil }
	a, pub := startAdapter(t, connect, time.Hour)
	pub.waitCount(t, 2)

	mixer.mu.Lock()
	mixer.readErr = errors.New("server gone")
	mixer.mu.Unlock()
	mixer.push()

	evs := pub.waitCount(t, 3)
	live, ok := evs[2].(event.LivenessChanged)
	if !ok || live.Live {
		t.Fatalf("want liveness down, got %#v", evs[2])
	}

	mixer.mu.Lock()
	mixer.readErr = nil
	mixer.mu.Unlock()

	pub.waitCount(t, 4)
	if !a.Healthy() {
		t.Error("adapter should recover after mixer reads again")
	}
}

func TestDeliverForwardsToMixer(t *testing.T) {
	mixer := newFakeMixer(event.VolumeChanged{Channel: event.ChannelSink, Level: 30})
	connect := func(ctx context.Context) (Mixer, error) { return mixer, nil }
	a, pub := startAdapter(t, connect, time.Hour)
	pub.waitCount(t, 2)

	if err := a.Deliver(context.Background(), &command.SetVolume{Channel: event.ChannelSink, Level: 55}); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if err := a.Deliver(context.Background(), &command.ToggleMute{Channel: event.ChannelSink}); err != nil {
		t.Fatalf("ToggleMute: %v", err)
	}

	mixer.mu.Lock()
	defer mixer.mu.Unlock()
	if len(mixer.sets) != 1 || mixer.sets[0].Level != 55 {
		t.Errorf("SetVolume not forwarded: %v", mixer.sets)
	}
	if len(mixer.toggles) != 1 || mixer.toggles[0] != event.ChannelSink {
		t.Errorf("ToggleMute not forwarded: %v", mixer.toggles)
	}
}

func TestDeliverWhileDisconnected(t *testing.T) {
	a := New(Config{}, func(ctx context.Context) (Mixer, error) { return nil, errors.New("down") }, discardLogger())
	err := a.Deliver(context.Background(), &command.SetVolume{Channel: event.ChannelSink, Level: 10})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("want ErrNotConnected, got %v", err)
	}
}

func TestDeliverRejectsForeignCommands(t *testing.T) {
	a := New(Config{}, func(ctx context.Context) (Mixer, error) { return nil, nil }, discardLogger())
	err := a.Deliver(context.Background(), &command.FocusWorkspace{ID: 1})
	if !errors.Is(err, adapters.ErrUnsupportedCommand) {
		t.Fatalf("want ErrUnsupportedCommand, got %v", err)
	}
}

func TestSystemMixerRejectsSourceChannel(t *testing.T) {
	err := SystemMixer{}.SetVolume(context.Background(), event.ChannelSource, 50)
	if !errors.Is(err, ErrUnsupportedChannel) {
		t.Fatalf("want ErrUnsupportedChannel, got %v", err)
	}
}

func TestClampLevel(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0}, {0, 0}, {50, 50}, {100, 100}, {130, 100},
	}
	for _, tc := range cases {
		if got := clampLevel(tc.in); got != tc.want {
			t.Errorf("clampLevel(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
