package ctl

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters"
	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBackend struct {
	mu        sync.Mutex
	submitted []command.Command
	submitErr error
	snap      state.Snapshot
	revision  uint64
	statuses  []adapters.Status
}

func (f *fakeBackend) Submit(cmd command.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, cmd)
	return nil
}

func (f *fakeBackend) Snapshot() state.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Clone()
}

func (f *fakeBackend) Revision() uint64            { return f.revision }
func (f *fakeBackend) Adapters() []adapters.Status { return f.statuses }
func (f *fakeBackend) Drops() uint64               { return 3 }
func (f *fakeBackend) Pending() int                { return 1 }

func (f *fakeBackend) commands() []command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Command, len(f.submitted))
	copy(out, f.submitted)
	return out
}

func startServer(t *testing.T, backend *fakeBackend) *Client {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "ctl.sock")
	srv := NewServer(socket, backend, discardLogger())
	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClient(socket)
}

func sendOK(t *testing.T, client *Client, line string) {
	t.Helper()
	raw, err := client.Send(line)
	if err != nil {
		t.Fatalf("send %q: %v", line, err)
	}
	var reply Reply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		t.Fatalf("reply %q: %v", raw, err)
	}
	if !reply.OK {
		t.Fatalf("command %q failed: %s", line, reply.Error)
	}
}

func sendErr(t *testing.T, client *Client, line string) string {
	t.Helper()
	raw, err := client.Send(line)
	if err != nil {
		t.Fatalf("send %q: %v", line, err)
	}
	var reply Reply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		t.Fatalf("reply %q: %v", raw, err)
	}
	if reply.OK {
		t.Fatalf("command %q unexpectedly succeeded", line)
	}
	return reply.Error
}

func TestWorkspaceCommand(t *testing.T) {
	backend := &fakeBackend{}
	client := startServer(t, backend)

	sendOK(t, client, "workspace 3")

	cmds := backend.commands()
	if len(cmds) != 1 {
		t.Fatalf("submitted %v", cmds)
	}
	fw, ok := cmds[0].(*command.FocusWorkspace)
	if !ok || fw.ID != 3 {
		t.Errorf("submitted %#v", cmds[0])
	}
}

func TestVolumeCommands(t *testing.T) {
	backend := &fakeBackend{}
	client := startServer(t, backend)

	sendOK(t, client, "volume set sink 40")
	sendOK(t, client, "volume mute source")
	sendOK(t, client, "volume toggle sink")

	cmds := backend.commands()
	if len(cmds) != 3 {
		t.Fatalf("submitted %v", cmds)
	}
	sv, ok := cmds[0].(*command.SetVolume)
	if !ok || sv.Channel != event.ChannelSink || sv.Level != 40 {
		t.Errorf("submitted %#v", cmds[0])
	}
	tm, ok := cmds[1].(*command.ToggleMute)
	if !ok || tm.Channel != event.ChannelSource {
		t.Errorf("submitted %#v", cmds[1])
	}
	tm2, ok := cmds[2].(*command.ToggleMute)
	if !ok || tm2.Channel != event.ChannelSink {
		t.Errorf("submitted %#v", cmds[2])
	}
}

func TestLayoutNextWrapsAround(t *testing.T) {
	backend := &fakeBackend{snap: state.NewSnapshot()}
	backend.snap.Layout = state.LayoutState{Names: []string{"us", "ru"}, Active: 1}
	client := startServer(t, backend)

	sendOK(t, client, "layout next")

	cmds := backend.commands()
	if len(cmds) != 1 {
		t.Fatalf("submitted %v", cmds)
	}
	sl, ok := cmds[0].(*command.SwitchLayout)
	if !ok || sl.Index != 0 {
		t.Errorf("want wrap to index 0, submitted %#v", cmds[0])
	}
}

func TestLayoutNextWithoutLayouts(t *testing.T) {
	backend := &fakeBackend{snap: state.NewSnapshot()}
	client := startServer(t, backend)

	msg := sendErr(t, client, "layout next")
	if msg == "" {
		t.Error("want error message for missing layouts")
	}
	if len(backend.commands()) != 0 {
		t.Error("nothing should be submitted")
	}
}

func TestSubmitErrorReported(t *testing.T) {
	backend := &fakeBackend{submitErr: errors.New("queue full")}
	client := startServer(t, backend)

	msg := sendErr(t, client, "workspace 1")
	if msg != "queue full" {
		t.Errorf("error = %q", msg)
	}
}

func TestStatus(t *testing.T) {
	backend := &fakeBackend{
		revision: 42,
		statuses: []adapters.Status{
			{Name: "sway", Domain: event.DomainSway, Healthy: true},
			{Name: "power", Domain: event.DomainPower, Healthy: false, Restarts: 2, LastError: errors.New("bus gone")},
		},
	}
	client := startServer(t, backend)

	raw, err := client.Send("status")
	if err != nil {
		t.Fatal(err)
	}
	var reply StatusReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		t.Fatalf("status reply %q: %v", raw, err)
	}
	if !reply.OK || reply.Revision != 42 || reply.Drops != 3 || reply.Pending != 1 {
		t.Errorf("reply = %+v", reply)
	}
	if len(reply.Adapters) != 2 || reply.Adapters[1].LastError != "bus gone" {
		t.Errorf("adapters = %+v", reply.Adapters)
	}
}

func TestStateReturnsSnapshot(t *testing.T) {
	backend := &fakeBackend{snap: state.NewSnapshot()}
	backend.snap.Workspaces = []state.Workspace{{ID: 1, Name: "1: web", Focused: true}}
	backend.snap.Power = state.PowerState{Percent: 77, Present: true}
	client := startServer(t, backend)

	raw, err := client.Send("state")
	if err != nil {
		t.Fatal(err)
	}
	var snap state.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("state reply %q: %v", raw, err)
	}
	if len(snap.Workspaces) != 1 || snap.Workspaces[0].Name != "1: web" {
		t.Errorf("workspaces = %+v", snap.Workspaces)
	}
	if snap.Power.Percent != 77 {
		t.Errorf("power = %+v", snap.Power)
	}
}

func TestMalformedRequests(t *testing.T) {
	backend := &fakeBackend{}
	client := startServer(t, backend)

	for _, line := range []string{
		"bogus",
		"workspace",
		"workspace many",
		"volume up sink",
		"volume set sink loud",
		"layout",
	} {
		if msg := sendErr(t, client, line); msg == "" {
			t.Errorf("no error message for %q", line)
		}
	}
	if len(backend.commands()) != 0 {
		t.Errorf("malformed input submitted %v", backend.commands())
	}
}

func TestStopRemovesSocket(t *testing.T) {
	backend := &fakeBackend{}
	socket := filepath.Join(t.TempDir(), "ctl.sock")
	srv := NewServer(socket, backend, discardLogger())
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	srv.Stop()

	if _, err := NewClient(socket).Send("status"); err == nil {
		t.Error("send should fail after Stop")
	}
	srv.Stop() // idempotent
}
