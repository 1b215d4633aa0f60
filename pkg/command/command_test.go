package command

import (
	"testing"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

func TestSetVolumeClamp(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  int
	}{
		{"below range", -5, 0},
		{"zero", 0, 0},
		{"in range", 40, 40},
		{"top", 100, 100},
		{"above range", 250, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &SetVolume{Channel: event.ChannelSink, Level: tt.level}
			if err := cmd.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if cmd.Level != tt.want {
				t.Errorf("level = %d, want %d", cmd.Level, tt.want)
			}
		})
	}
}

func TestValidateRejectsUnknownChannel(t *testing.T) {
	cmds := []Command{
		&SetVolume{Channel: "headphones", Level: 10},
		&ToggleMute{Channel: ""},
	}
	for _, cmd := range cmds {
		if err := cmd.Validate(); err == nil {
			t.Errorf("%T: Validate() accepted unknown channel", cmd)
		}
	}
}

func TestValidateRejectsNegativeIDs(t *testing.T) {
	if err := (&FocusWorkspace{ID: -1}).Validate(); err == nil {
		t.Error("FocusWorkspace accepted negative id")
	}
	if err := (&SwitchLayout{Index: -2}).Validate(); err == nil {
		t.Error("SwitchLayout accepted negative index")
	}
}

func TestCommandDomains(t *testing.T) {
	tests := []struct {
		cmd  Command
		want event.Domain
	}{
		{&SetVolume{Channel: event.ChannelSink}, event.DomainVolume},
		{&ToggleMute{Channel: event.ChannelSource}, event.DomainVolume},
		{&FocusWorkspace{ID: 3}, event.DomainSway},
		{&SwitchLayout{Index: 1}, event.DomainSway},
	}
	for _, tt := range tests {
		if got := tt.cmd.Domain(); got != tt.want {
			t.Errorf("%T: Domain() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
