package panels

import (
	"strings"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

func TestVolumePanelViewNoData(t *testing.T) {
	w := NewVolume(&recordingSink{}, testZones(t), theme.Get("default"))
	if view := w.View(30, 2); !strings.Contains(view, "No mixer") {
		t.Errorf("empty panel should say 'No mixer', got %q", view)
	}
}

func TestVolumePanelRowsSinkFirst(t *testing.T) {
	w := NewVolume(&recordingSink{}, testZones(t), theme.Get("default"))
	w.Update(stateMsg(testSnapshot()))

	view := w.View(30, 2)
	lines := strings.Split(view, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d:\n%s", len(lines), view)
	}
	if !strings.Contains(lines[0], "40%") {
		t.Errorf("sink row should show 40%%, got %q", lines[0])
	}
	// The muted source renders "mute" instead of its level.
	if !strings.Contains(lines[1], "mute") {
		t.Errorf("muted source row should show 'mute', got %q", lines[1])
	}
}

func TestVolumePanelKeys(t *testing.T) {
	sink := &recordingSink{}
	w := NewVolume(sink, testZones(t), theme.Get("default"))
	w.Update(stateMsg(testSnapshot()))

	runCmd(w.HandleKey(keyMsg("+")))
	runCmd(w.HandleKey(keyMsg("-")))
	runCmd(w.HandleKey(keyMsg("m")))

	if len(sink.cmds) != 3 {
		t.Fatalf("submitted %d commands, want 3", len(sink.cmds))
	}
	up := sink.cmds[0].(*command.SetVolume)
	if up.Channel != event.ChannelSink || up.Level != 45 {
		t.Errorf("'+' should set sink to 45, got %#v", up)
	}
	down := sink.cmds[1].(*command.SetVolume)
	if down.Level != 35 {
		t.Errorf("'-' should set sink to 35, got %d", down.Level)
	}
	if _, ok := sink.cmds[2].(*command.ToggleMute); !ok {
		t.Errorf("'m' should toggle mute, got %#v", sink.cmds[2])
	}
}

func TestVolumePanelKeysWithoutReading(t *testing.T) {
	sink := &recordingSink{}
	w := NewVolume(sink, testZones(t), theme.Get("default"))
	if cmd := w.HandleKey(keyMsg("+")); cmd != nil {
		t.Error("keys before the first reading should be ignored")
	}
}

func TestVolumePanelFlashOnChange(t *testing.T) {
	w := NewVolume(&recordingSink{}, testZones(t), theme.Get("default"))
	w.Update(stateMsg(testSnapshot()))
	if w.flashCh != "" {
		t.Fatalf("first snapshot must not flash, got %q", w.flashCh)
	}

	s := testSnapshot()
	s.Volume[event.ChannelSink] = state.VolumeState{Level: 45}
	w.Update(stateMsg(s))

	if w.flashCh != event.ChannelSink {
		t.Errorf("sink change should flash sink, got %q", w.flashCh)
	}
	if w.flashUntil.IsZero() {
		t.Error("flash deadline should be armed")
	}
}

func TestVolumePanelFlashExpiresOnTick(t *testing.T) {
	w := NewVolume(&recordingSink{}, testZones(t), theme.Get("default"))
	w.Update(stateMsg(testSnapshot()))

	s := testSnapshot()
	s.Volume[event.ChannelSink] = state.VolumeState{Level: 45}
	w.Update(stateMsg(s))

	// A tick before the deadline keeps the flash.
	w.Update(panel.TickEvent{Time: time.Now()})
	if w.flashCh != event.ChannelSink {
		t.Error("early tick must not clear the flash")
	}

	w.Update(panel.TickEvent{Time: time.Now().Add(2 * volFlashFor)})
	if w.flashCh != "" {
		t.Error("late tick should clear the flash")
	}
}

func TestVolumePanelUnchangedSnapshotNoFlash(t *testing.T) {
	w := NewVolume(&recordingSink{}, testZones(t), theme.Get("default"))
	w.Update(stateMsg(testSnapshot()))
	w.Update(stateMsg(testSnapshot()))
	if w.flashCh != "" {
		t.Errorf("identical readings must not flash, got %q", w.flashCh)
	}
}

func TestVolIconBuckets(t *testing.T) {
	cases := []struct {
		name string
		ch   event.Channel
		vs   state.VolumeState
		want string
	}{
		{"muted sink", event.ChannelSink, state.VolumeState{Level: 90, Muted: true}, volIconMuted},
		{"low", event.ChannelSink, state.VolumeState{Level: 25}, volIconLow},
		{"medium", event.ChannelSink, state.VolumeState{Level: 50}, volIconMedium},
		{"high", event.ChannelSink, state.VolumeState{Level: 51}, volIconHigh},
		{"mic", event.ChannelSource, state.VolumeState{Level: 30}, volIconMic},
		{"mic muted", event.ChannelSource, state.VolumeState{Level: 30, Muted: true}, volIconMicOff},
	}
	for _, tc := range cases {
		if got := volIcon(tc.ch, tc.vs); got != tc.want {
			t.Errorf("%s: volIcon = %q, want %q", tc.name, got, tc.want)
		}
	}
}
