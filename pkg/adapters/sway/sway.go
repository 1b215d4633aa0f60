// Package sway bridges the compositor's IPC surface to the core. The
// adapter holds two connections: one subscribed to workspace/window/input
// events, one for queries. On every event it re-queries the full state and
// publishes only what changed, so a burst of compositor events collapses
// into a minimal event stream and a reconnect naturally replays current
// state. Keyboard layout state rides the same IPC connection, so this
// adapter also owns the layout domain.
package sway

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/swaypulse/pkg/adapters"
	"gitlab.com/tinyland/lab/swaypulse/pkg/command"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/swayipc"
)

// Default reconnect schedule.
const (
	DefaultReconnectMin = 200 * time.Millisecond
	DefaultReconnectMax = 5 * time.Second
)

// queryTimeout bounds a single state re-query. A compositor that does not
// answer within this window is treated as gone.
const queryTimeout = 3 * time.Second

// subscribed event names.
var subscriptions = []string{"workspace", "window", "input"}

// Client abstracts the compositor connection for testability. The real
// implementation is *swayipc.Client.
type Client interface {
	Workspaces(ctx context.Context) ([]swayipc.WorkspaceInfo, error)
	Tree(ctx context.Context) (*swayipc.Node, error)
	Inputs(ctx context.Context) ([]swayipc.InputDevice, error)
	RunCommand(ctx context.Context, cmd string) error
	Subscribe(ctx context.Context, events ...string) error
	NextEvent(ctx context.Context) (swayipc.Event, error)
	Close() error
}

// Dialer opens one compositor connection. Production wiring uses Dial from
// this package; tests inject fakes.
type Dialer func(ctx context.Context) (Client, error)

// Config holds the adapter configuration.
type Config struct {
	// Socket overrides SWAYSOCK/I3SOCK discovery when non-empty.
	Socket string
	// ReconnectMin/ReconnectMax bound the exponential backoff after a
	// lost connection. Zero values use the defaults.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Dial returns a Dialer for the configured socket.
func Dial(cfg Config) Dialer {
	return func(ctx context.Context) (Client, error) {
		return swayipc.Dial(ctx, cfg.Socket)
	}
}

// Adapter is the compositor source adapter.
type Adapter struct {
	cfg    Config
	dial   Dialer
	logger *slog.Logger

	mu      sync.Mutex
	healthy bool
	last    diffState
}

// diffState is the last published picture of the compositor, used to
// suppress redundant events.
type diffState struct {
	workspaces map[int64]event.WorkspaceChanged
	windows    map[int64]event.WindowChanged
	layout     *event.LayoutChanged
}

// New creates the adapter. The dialer must not be nil.
func New(cfg Config, dial Dialer, logger *slog.Logger) *Adapter {
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = DefaultReconnectMin
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = DefaultReconnectMax
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{cfg: cfg, dial: dial, logger: logger}
}

// Name returns the adapter identifier.
func (a *Adapter) Name() string { return "sway" }

// Domain returns the command domain this adapter serves.
func (a *Adapter) Domain() event.Domain { return event.DomainSway }

// Healthy reports whether the event subscription is currently up.
func (a *Adapter) Healthy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.healthy
}

// Run maintains the event subscription until ctx is cancelled, reconnecting
// with exponential backoff. While disconnected nothing is published except
// a single liveness-down notice; last-known state stays visible to readers
// of the view model.
func (a *Adapter) Run(ctx context.Context, pub adapters.Publisher) error {
	backoff := adapters.NewBackoff(a.cfg.ReconnectMin, a.cfg.ReconnectMax)

	for {
		err := a.session(ctx, pub, backoff)
		if ctx.Err() != nil {
			a.setLive(pub, false)
			return nil
		}

		a.setLive(pub, false)
		a.logger.Warn("compositor connection lost", "error", err)
		if !backoff.Sleep(ctx) {
			return nil
		}
	}
}

// session runs one connected episode: dial both connections, subscribe,
// publish a full refresh, then re-query on every event. Returns when the
// connection breaks or ctx is cancelled.
func (a *Adapter) session(ctx context.Context, pub adapters.Publisher, backoff *adapters.Backoff) error {
	evConn, err := a.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial event connection: %w", err)
	}
	defer evConn.Close()

	queryConn, err := a.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial query connection: %w", err)
	}
	defer queryConn.Close()

	// Unblock pending reads when the process shuts down.
	stop := context.AfterFunc(ctx, func() {
		evConn.Close()
		queryConn.Close()
	})
	defer stop()

	if err := evConn.Subscribe(ctx, subscriptions...); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	// Full refresh first: after a reconnect every record is re-published
	// so a consumer that missed removals still converges.
	if err := a.refresh(ctx, queryConn, pub, true); err != nil {
		return err
	}
	backoff.Reset()
	a.setLive(pub, true)

	for {
		if _, err := evConn.NextEvent(ctx); err != nil {
			return fmt.Errorf("event stream: %w", err)
		}
		if err := a.refresh(ctx, queryConn, pub, false); err != nil {
			return err
		}
	}
}

// refresh re-queries workspaces, tree, and inputs, and publishes the
// difference against the last published state. With force set, every
// current record is published even if unchanged; removals are always
// derived from the retained previous state.
func (a *Adapter) refresh(ctx context.Context, conn Client, pub adapters.Publisher, force bool) error {
	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	infos, err := conn.Workspaces(qctx)
	if err != nil {
		return fmt.Errorf("query workspaces: %w", err)
	}
	tree, err := conn.Tree(qctx)
	if err != nil {
		return fmt.Errorf("query tree: %w", err)
	}
	inputs, err := conn.Inputs(qctx)
	if err != nil {
		return fmt.Errorf("query inputs: %w", err)
	}

	workspaces := mapWorkspaces(infos)
	windows := mapWindows(tree)
	layout := mapLayout(inputs)

	a.mu.Lock()
	prev := a.last
	a.last = diffState{workspaces: workspaces, windows: windows, layout: layout}
	a.mu.Unlock()

	// Removals first so an id reused by the compositor is re-added after
	// its deletion, not before.
	for id := range prev.workspaces {
		if _, ok := workspaces[id]; !ok {
			pub.Publish(event.WorkspaceRemoved{ID: id})
		}
	}
	for id := range prev.windows {
		if _, ok := windows[id]; !ok {
			pub.Publish(event.WindowClosed{ID: id})
		}
	}

	for _, info := range infos { // keep compositor order for upserts
		ev := workspaces[info.Num]
		if force || prev.workspaces[info.Num] != ev {
			pub.Publish(ev)
		}
	}
	for id, ev := range windows {
		if force || prev.windows[id] != ev {
			pub.Publish(ev)
		}
	}
	if layout != nil {
		if force || prev.layout == nil || !layoutEqual(*prev.layout, *layout) {
			pub.Publish(*layout)
		}
	}
	return nil
}

// Deliver executes compositor commands on a short-lived connection. Each
// command dials fresh so a wedged subscription never blocks user intents.
func (a *Adapter) Deliver(ctx context.Context, cmd command.Command) error {
	var run string
	switch c := cmd.(type) {
	case *command.FocusWorkspace:
		run = fmt.Sprintf("workspace number %d", c.ID)
	case *command.SwitchLayout:
		run = fmt.Sprintf("input type:keyboard xkb_switch_layout %d", c.Index)
	default:
		return adapters.ErrUnsupportedCommand
	}

	dctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	conn, err := a.dial(dctx)
	if err != nil {
		return fmt.Errorf("dial for command: %w", err)
	}
	defer conn.Close()

	if err := conn.RunCommand(dctx, run); err != nil {
		return fmt.Errorf("run %q: %w", run, err)
	}
	return nil
}

// setLive updates the health flag and publishes liveness transitions for
// both domains served by this connection. Repeated identical states are
// not re-published.
func (a *Adapter) setLive(pub adapters.Publisher, live bool) {
	a.mu.Lock()
	if a.healthy == live {
		a.mu.Unlock()
		return
	}
	a.healthy = live
	a.mu.Unlock()

	pub.Publish(event.LivenessChanged{Source: event.DomainSway, Live: live})
	pub.Publish(event.LivenessChanged{Source: event.DomainLayout, Live: live})
}

func mapWorkspaces(infos []swayipc.WorkspaceInfo) map[int64]event.WorkspaceChanged {
	out := make(map[int64]event.WorkspaceChanged, len(infos))
	for _, w := range infos {
		out[w.Num] = event.WorkspaceChanged{
			ID:      w.Num,
			Name:    w.Name,
			Focused: w.Focused,
			Urgent:  w.Urgent,
			Visible: w.Visible,
			Output:  w.Output,
		}
	}
	return out
}

func mapWindows(tree *swayipc.Node) map[int64]event.WindowChanged {
	out := make(map[int64]event.WindowChanged)
	if tree == nil {
		return out
	}
	tree.VisitWindows(func(ws, win *swayipc.Node) {
		appID := ""
		if win.AppID != nil {
			appID = *win.AppID
		}
		out[win.ID] = event.WindowChanged{
			ID:          win.ID,
			Title:       win.Name,
			AppID:       appID,
			WorkspaceID: ws.Num,
		}
	})
	return out
}

// mapLayout extracts layout state from the first keyboard exposing xkb
// layout names. Returns nil when no keyboard reports layouts.
func mapLayout(inputs []swayipc.InputDevice) *event.LayoutChanged {
	for _, dev := range inputs {
		if dev.Type != "keyboard" || len(dev.XkbLayoutNames) == 0 {
			continue
		}
		return &event.LayoutChanged{
			Names:  slices.Clone(dev.XkbLayoutNames),
			Active: dev.XkbActiveLayoutIndex,
		}
	}
	return nil
}

func layoutEqual(a, b event.LayoutChanged) bool {
	return a.Active == b.Active && slices.Equal(a.Names, b.Names)
}
