// Package state holds the aggregate view model, the pure reducer that
// folds events into it, and the store that owns the current snapshot.
package state

import (
	"maps"
	"slices"

	"github.com/samber/lo"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// Workspace is one compositor workspace as last reported.
type Workspace struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
	Urgent  bool   `json:"urgent"`
	Visible bool   `json:"visible"`
	Output  string `json:"output,omitempty"`
}

// Window is one compositor window (container).
type Window struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AppID       string `json:"app_id,omitempty"`
	WorkspaceID int64  `json:"workspace_id"`
}

// PowerState is the last de-duplicated power supply reading.
type PowerState struct {
	Percent  int  `json:"percent"`
	Charging bool `json:"charging"`
	OnAC     bool `json:"on_ac"`
	Present  bool `json:"present"`
}

// Critical reports whether the battery is discharging below the given
// percentage. Always false without a battery.
func (p PowerState) Critical(below int) bool {
	return p.Present && !p.Charging && p.Percent < below
}

// VolumeState is the last de-duplicated reading for one mixer channel.
type VolumeState struct {
	Level int  `json:"level"`
	Muted bool `json:"muted"`
}

// LayoutState is the keyboard layout group list and the active index.
type LayoutState struct {
	Names  []string `json:"names,omitempty"`
	Active int      `json:"active"`
}

// ActiveName returns the active layout's name, or "" when unknown.
func (l LayoutState) ActiveName() string {
	if l.Active < 0 || l.Active >= len(l.Names) {
		return ""
	}
	return l.Names[l.Active]
}

// SysStats is the last system load / memory sample.
type SysStats struct {
	Load1          float64 `json:"load1"`
	Load5          float64 `json:"load5"`
	Load15         float64 `json:"load15"`
	MemUsedPercent float64 `json:"mem_used_percent"`
}

// Snapshot is the complete view model: everything the rendering layer may
// display, in one consistent value. Snapshots handed out by the store are
// independent copies; readers never observe a half-applied update.
type Snapshot struct {
	// Workspaces is ordered by arrival of first sighting; ids are unique.
	Workspaces []Workspace `json:"workspaces"`
	// FocusedWindow is the window on the focused workspace, if known.
	FocusedWindow *Window `json:"focused_window,omitempty"`
	// Windows indexes every known window by id, focused or not.
	Windows map[int64]Window              `json:"windows,omitempty"`
	Power   PowerState                    `json:"power"`
	Volume  map[event.Channel]VolumeState `json:"volume"`
	Layout  LayoutState                   `json:"layout"`
	Stats   SysStats                      `json:"stats"`
	// Health reports per-domain adapter liveness. A missing entry means the
	// domain has not reported yet. Data for a dead domain is retained and
	// should be rendered as stale, not cleared.
	Health map[event.Domain]bool `json:"health"`
}

// NewSnapshot returns the empty view model used at startup.
func NewSnapshot() Snapshot {
	return Snapshot{
		Windows: make(map[int64]Window),
		Volume:  make(map[event.Channel]VolumeState),
		Health:  make(map[event.Domain]bool),
	}
}

// Clone returns a deep copy sharing no mutable data with the receiver.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Workspaces = slices.Clone(s.Workspaces)
	out.Windows = maps.Clone(s.Windows)
	out.Volume = maps.Clone(s.Volume)
	out.Health = maps.Clone(s.Health)
	out.Layout.Names = slices.Clone(s.Layout.Names)
	if s.FocusedWindow != nil {
		w := *s.FocusedWindow
		out.FocusedWindow = &w
	}
	return out
}

// FocusedWorkspace returns the focused workspace, if any.
func (s Snapshot) FocusedWorkspace() (Workspace, bool) {
	return lo.Find(s.Workspaces, func(w Workspace) bool { return w.Focused })
}

// Live reports the liveness flag for a domain, defaulting to false for
// domains that have not reported.
func (s Snapshot) Live(d event.Domain) bool {
	return s.Health[d]
}

// validate checks the invariants every applied snapshot must hold.
func (s Snapshot) validate() error {
	dupes := lo.FindDuplicatesBy(s.Workspaces, func(w Workspace) int64 { return w.ID })
	if len(dupes) > 0 {
		return &InvariantError{Field: "workspaces", Detail: "duplicate workspace ids"}
	}
	return nil
}

// InvariantError reports a reducer result that violates a view-model
// invariant. It indicates a contract breach upstream and is surfaced loudly
// by the store; the offending event is not applied.
type InvariantError struct {
	Field  string
	Detail string
}

func (e *InvariantError) Error() string {
	return "state: invariant violated on " + e.Field + ": " + e.Detail
}
