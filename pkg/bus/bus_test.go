package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// nextWithTimeout fails the test if Next does not return within a second.
func nextWithTimeout(t *testing.T, b *Bus) event.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := b.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	return ev
}

func TestPublishNextFIFO(t *testing.T) {
	b := New(8)
	in := []event.Event{
		event.WorkspaceChanged{ID: 1, Name: "web"},
		event.PowerChanged{Percent: 80},
		event.VolumeChanged{Channel: event.ChannelSink, Level: 30},
		event.WorkspaceChanged{ID: 2, Name: "term"},
	}
	for _, ev := range in {
		if err := b.Publish(ev); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	for i, want := range in {
		got := nextWithTimeout(t, b)
		if got != want {
			t.Errorf("event %d = %#v, want %#v", i, got, want)
		}
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() = %d after drain, want 0", b.Pending())
	}
}

func TestDropOldestOfClass(t *testing.T) {
	const capacity, published = 4, 10
	b := New(capacity)

	for i := 0; i < published; i++ {
		if err := b.Publish(event.VolumeChanged{Channel: event.ChannelSink, Level: i}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	if got := b.Pending(); got != capacity {
		t.Errorf("Pending() = %d, want %d", got, capacity)
	}
	if got := b.Drops("volume:sink"); got != published-capacity {
		t.Errorf("Drops() = %d, want %d", got, published-capacity)
	}

	// The survivors must be the newest [published-capacity, published)
	// readings, still in order.
	for i := published - capacity; i < published; i++ {
		ev := nextWithTimeout(t, b).(event.VolumeChanged)
		if ev.Level != i {
			t.Errorf("drained level = %d, want %d", ev.Level, i)
		}
	}
}

func TestDropIsolationBetweenClasses(t *testing.T) {
	b := New(2)

	// Fill and overflow the sink class.
	for i := 0; i < 5; i++ {
		b.Publish(event.VolumeChanged{Channel: event.ChannelSink, Level: i})
	}
	// One pending source reading and one power reading must survive the
	// sink flood untouched.
	b.Publish(event.VolumeChanged{Channel: event.ChannelSource, Level: 55})
	b.Publish(event.PowerChanged{Percent: 42, Present: true})
	for i := 5; i < 9; i++ {
		b.Publish(event.VolumeChanged{Channel: event.ChannelSink, Level: i})
	}

	if got := b.Drops("volume:source"); got != 0 {
		t.Errorf("source drops = %d, want 0", got)
	}
	if got := b.Drops("power"); got != 0 {
		t.Errorf("power drops = %d, want 0", got)
	}
	if got := b.Drops("volume:sink"); got != 7 {
		t.Errorf("sink drops = %d, want 7", got)
	}

	var sawSource, sawPower bool
	for b.Pending() > 0 {
		switch ev := nextWithTimeout(t, b).(type) {
		case event.VolumeChanged:
			if ev.Channel == event.ChannelSource {
				sawSource = true
			}
		case event.PowerChanged:
			sawPower = true
		}
	}
	if !sawSource || !sawPower {
		t.Errorf("flood evicted other classes: source=%v power=%v", sawSource, sawPower)
	}
}

func TestNextBlocksUntilPublish(t *testing.T) {
	b := New(4)
	got := make(chan event.Event, 1)

	go func() {
		ev, err := b.Next(context.Background())
		if err == nil {
			got <- ev
		}
	}()

	// Give the consumer a chance to park on an empty queue.
	time.Sleep(20 * time.Millisecond)
	want := event.PowerChanged{Percent: 99}
	b.Publish(want)

	select {
	case ev := <-got:
		if ev != event.Event(want) {
			t.Errorf("Next() = %#v, want %#v", ev, want)
		}
	case <-time.After(time.Second):
		t.Fatal("Next() did not wake after Publish")
	}
}

func TestNextContextCancel(t *testing.T) {
	b := New(4)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		_, err := b.Next(ctx)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Next() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Next() did not observe cancellation")
	}
}

func TestCloseDrainsThenReportsClosed(t *testing.T) {
	b := New(4)
	b.Publish(event.PowerChanged{Percent: 10, Present: true})
	b.Close()

	ev, err := b.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() after Close error = %v, want drained event", err)
	}
	if _, ok := ev.(event.PowerChanged); !ok {
		t.Errorf("drained %#v, want the pending PowerChanged", ev)
	}

	if _, err := b.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Next() on empty closed bus error = %v, want ErrClosed", err)
	}
	if err := b.Publish(event.PowerChanged{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after Close error = %v, want ErrClosed", err)
	}
}

func TestCloseWakesParkedConsumer(t *testing.T) {
	b := New(4)
	errc := make(chan error, 1)
	go func() {
		_, err := b.Next(context.Background())
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	b.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Next() error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the parked consumer")
	}
}

func TestNoDuplicateDeliveryUnderConcurrency(t *testing.T) {
	const producers, perProducer = 8, 50
	b := New(producers * perProducer) // large enough that nothing drops

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				b.Publish(event.WindowChanged{ID: int64(p*perProducer + i)})
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for i := 0; i < producers*perProducer; i++ {
		ev := nextWithTimeout(t, b).(event.WindowChanged)
		if seen[ev.ID] {
			t.Fatalf("event %d delivered twice", ev.ID)
		}
		seen[ev.ID] = true
	}
	if got := b.TotalDrops(); got != 0 {
		t.Errorf("TotalDrops() = %d, want 0", got)
	}
}
