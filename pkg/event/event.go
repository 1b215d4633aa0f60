// Package event defines the typed events produced by source adapters.
//
// Every change observed on an external system (compositor, power supply,
// audio mixer, ...) is modeled as one immutable Event value. Adapters are
// the only producers; the reducer in pkg/state is the only interpreter.
package event

// Domain identifies the source adapter a piece of state belongs to.
type Domain string

const (
	DomainSway   Domain = "sway"
	DomainPower  Domain = "power"
	DomainVolume Domain = "volume"
	DomainLayout Domain = "layout"
	DomainStats  Domain = "stats"
)

// Channel names an audio endpoint on the mixer.
type Channel string

const (
	ChannelSink   Channel = "sink"   // playback (speakers/headphones)
	ChannelSource Channel = "source" // capture (microphone)
)

// Event is one state transition observed by a source adapter.
//
// Events are immutable once constructed. Class groups events for the bus
// back-pressure policy: when the queue for a class is full, the oldest
// pending event of that class is evicted, so the most recent reading per
// class always survives a slow consumer.
type Event interface {
	Domain() Domain
	Class() string
	isEvent()
}

// WorkspaceChanged reports a workspace appearing or changing. ID is the
// workspace number, unique across the compositor.
type WorkspaceChanged struct {
	ID      int64
	Name    string
	Focused bool
	Urgent  bool
	Visible bool
	Output  string
}

func (WorkspaceChanged) Domain() Domain { return DomainSway }
func (WorkspaceChanged) Class() string  { return "workspace" }
func (WorkspaceChanged) isEvent()       {}

// WorkspaceRemoved reports a workspace that no longer exists.
type WorkspaceRemoved struct {
	ID int64
}

func (WorkspaceRemoved) Domain() Domain { return DomainSway }
func (WorkspaceRemoved) Class() string  { return "workspace-removed" }
func (WorkspaceRemoved) isEvent()       {}

// WindowChanged reports the state of a window (container). WorkspaceID is
// the workspace the window currently sits on; the reducer uses it to decide
// whether the window is the focused one.
type WindowChanged struct {
	ID          int64
	Title       string
	AppID       string
	WorkspaceID int64
}

func (WindowChanged) Domain() Domain { return DomainSway }
func (WindowChanged) Class() string  { return "window" }
func (WindowChanged) isEvent()       {}

// WindowClosed reports a window that no longer exists.
type WindowClosed struct {
	ID int64
}

func (WindowClosed) Domain() Domain { return DomainSway }
func (WindowClosed) Class() string  { return "window-closed" }
func (WindowClosed) isEvent()       {}

// PowerChanged reports a de-duplicated power supply reading. Percent is the
// battery charge in [0,100]; Present is false on machines without a battery.
type PowerChanged struct {
	Percent  int
	Charging bool
	OnAC     bool
	Present  bool
}

func (PowerChanged) Domain() Domain { return DomainPower }
func (PowerChanged) Class() string  { return "power" }
func (PowerChanged) isEvent()       {}

// VolumeChanged reports a de-duplicated mixer reading for one channel.
// Level is in [0,100].
type VolumeChanged struct {
	Channel Channel
	Level   int
	Muted   bool
}

func (VolumeChanged) Domain() Domain { return DomainVolume }
func (v VolumeChanged) Class() string {
	return "volume:" + string(v.Channel)
}
func (VolumeChanged) isEvent() {}

// LayoutChanged reports the keyboard layout group list and the active index.
type LayoutChanged struct {
	Names  []string
	Active int
}

func (LayoutChanged) Domain() Domain { return DomainLayout }
func (LayoutChanged) Class() string  { return "layout" }
func (LayoutChanged) isEvent()       {}

// StatsChanged reports a system load / memory sample.
type StatsChanged struct {
	Load1          float64
	Load5          float64
	Load15         float64
	MemUsedPercent float64
}

func (StatsChanged) Domain() Domain { return DomainStats }
func (StatsChanged) Class() string  { return "stats" }
func (StatsChanged) isEvent()       {}

// LivenessChanged flips the health flag for a domain. Adapters emit it when
// the upstream connection is lost or re-established; the domain's last-known
// data is left intact so the UI can render it as stale.
type LivenessChanged struct {
	Source Domain
	Live   bool
}

func (l LivenessChanged) Domain() Domain { return l.Source }
func (l LivenessChanged) Class() string {
	return "liveness:" + string(l.Source)
}
func (LivenessChanged) isEvent() {}
