package adapters

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// collectPublisher gathers published events for assertions.
type collectPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *collectPublisher) Publish(ev event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *collectPublisher) snapshot() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Event, len(p.events))
	copy(out, p.events)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBackoffSchedule(t *testing.T) {
	b := NewBackoff(200*time.Millisecond, 5*time.Second)

	want := []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second,
		5 * time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("attempt %d: Next() = %v, want %v", i, got, w)
		}
	}

	b.Reset()
	if got := b.Next(); got != 200*time.Millisecond {
		t.Errorf("after Reset: Next() = %v, want 200ms", got)
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoff(0, 0)
	if b.Min != 200*time.Millisecond || b.Max != 5*time.Second {
		t.Errorf("defaults = (%v, %v)", b.Min, b.Max)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := NewSupervisor(&collectPublisher{}, discardLogger())

	if err := s.Register(NewFakeAdapter("sway", event.DomainSway)); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := s.Register(NewFakeAdapter("sway", event.DomainPower)); err == nil {
		t.Error("duplicate name accepted")
	}
	if err := s.Register(NewFakeAdapter("sway2", event.DomainSway)); err == nil {
		t.Error("duplicate domain accepted")
	}
}

func TestSupervisorRunsAdapters(t *testing.T) {
	pub := &collectPublisher{}
	s := NewSupervisor(pub, discardLogger())

	s.Register(NewFakeAdapter("power", event.DomainPower,
		WithScript(event.PowerChanged{Percent: 50, Present: true})))
	s.Register(NewFakeAdapter("volume", event.DomainVolume,
		WithScript(event.VolumeChanged{Channel: event.ChannelSink, Level: 30})))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.After(time.Second)
	for len(pub.snapshot()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("published %d events, want 2", len(pub.snapshot()))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	s.Wait()
}

func TestSupervisorRestartsCrashedAdapter(t *testing.T) {
	pub := &collectPublisher{}
	s := NewSupervisor(pub, discardLogger())
	s.restartMin = time.Millisecond
	s.restartMax = 2 * time.Millisecond

	var runs atomic.Int64
	crashy := NewFakeAdapter("power", event.DomainPower, WithRunFunc(
		func(ctx context.Context, pub Publisher) error {
			if runs.Add(1) < 3 {
				return errors.New("connection refused")
			}
			<-ctx.Done()
			return nil
		}))
	s.Register(crashy)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.After(time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("runs = %d, want 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	st, ok := s.Status("power")
	if !ok {
		t.Fatal("status missing")
	}
	if st.Restarts < 2 {
		t.Errorf("Restarts = %d, want >= 2", st.Restarts)
	}
	if st.LastError == nil {
		t.Error("LastError not recorded")
	}

	cancel()
	s.Wait()
}

func TestDeliverRoutesByDomain(t *testing.T) {
	s := NewSupervisor(&collectPublisher{}, discardLogger())

	volume := NewFakeAdapter("volume", event.DomainVolume)
	sway := NewFakeAdapter("sway", event.DomainSway)
	s.Register(volume)
	s.Register(sway)

	cmd := &command.SetVolume{Channel: event.ChannelSink, Level: 70}
	if err := s.Deliver(context.Background(), cmd); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if got := volume.Delivered(); len(got) != 1 || got[0] != command.Command(cmd) {
		t.Errorf("volume adapter got %v", got)
	}
	if got := sway.Delivered(); len(got) != 0 {
		t.Errorf("sway adapter got %v, want none", got)
	}
}

func TestDeliverUnknownDomain(t *testing.T) {
	s := NewSupervisor(&collectPublisher{}, discardLogger())
	err := s.Deliver(context.Background(), &command.FocusWorkspace{ID: 1})
	if err == nil {
		t.Fatal("Deliver without a matching adapter succeeded")
	}
}

// flaky fails the first Deliver and succeeds on the retry.
type flaky struct {
	*FakeAdapter
	failures atomic.Int64
}

func (f *flaky) Deliver(ctx context.Context, cmd command.Command) error {
	if f.failures.Add(1) == 1 {
		return errors.New("broken pipe")
	}
	return f.FakeAdapter.Deliver(ctx, cmd)
}

func TestDeliverRetriesOnce(t *testing.T) {
	s := NewSupervisor(&collectPublisher{}, discardLogger())

	f := &flaky{FakeAdapter: NewFakeAdapter("volume", event.DomainVolume)}
	s.Register(f)

	cmd := &command.ToggleMute{Channel: event.ChannelSink}
	if err := s.Deliver(context.Background(), cmd); err != nil {
		t.Fatalf("Deliver with one transient failure: %v", err)
	}
	if got := f.Delivered(); len(got) != 1 {
		t.Errorf("delivered = %v, want the retried command", got)
	}

	// A persistently failing adapter: exactly two attempts, then an error.
	stubborn := NewFakeAdapter("sway", event.DomainSway,
		WithDeliverError(errors.New("socket closed")))
	s.Register(stubborn)

	if err := s.Deliver(context.Background(), &command.FocusWorkspace{ID: 2}); err == nil {
		t.Error("Deliver to a persistently failing adapter succeeded")
	}
}
