package state

import (
	"slices"

	"github.com/samber/lo"

	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
)

// Reduce folds one event into the snapshot and returns the result plus
// whether anything changed. It is pure: the input snapshot is never
// modified, no I/O, no clock. Applying the same event twice changes the
// snapshot at most once, and events from different domains commute.
func Reduce(s Snapshot, ev event.Event) (Snapshot, bool) {
	switch ev := ev.(type) {
	case event.WorkspaceChanged:
		return reduceWorkspace(s, ev)
	case event.WorkspaceRemoved:
		return reduceWorkspaceRemoved(s, ev)
	case event.WindowChanged:
		return reduceWindow(s, ev)
	case event.WindowClosed:
		return reduceWindowClosed(s, ev)
	case event.PowerChanged:
		next := PowerState(ev)
		if s.Power == next {
			return s, false
		}
		out := s.Clone()
		out.Power = next
		return out, true
	case event.VolumeChanged:
		next := VolumeState{Level: ev.Level, Muted: ev.Muted}
		if cur, ok := s.Volume[ev.Channel]; ok && cur == next {
			return s, false
		}
		out := s.Clone()
		out.Volume[ev.Channel] = next
		return out, true
	case event.LayoutChanged:
		if slices.Equal(s.Layout.Names, ev.Names) && s.Layout.Active == ev.Active {
			return s, false
		}
		out := s.Clone()
		out.Layout = LayoutState{Names: slices.Clone(ev.Names), Active: ev.Active}
		return out, true
	case event.StatsChanged:
		next := SysStats(ev)
		if s.Stats == next {
			return s, false
		}
		out := s.Clone()
		out.Stats = next
		return out, true
	case event.LivenessChanged:
		if cur, ok := s.Health[ev.Source]; ok && cur == ev.Live {
			return s, false
		}
		out := s.Clone()
		out.Health[ev.Source] = ev.Live
		return out, true
	default:
		// Unknown variant: ignore rather than guess.
		return s, false
	}
}

// reduceWorkspace upserts by id. An existing entry keeps its position in
// the sequence; a new id is appended.
func reduceWorkspace(s Snapshot, ev event.WorkspaceChanged) (Snapshot, bool) {
	next := Workspace(ev)
	_, idx, found := lo.FindIndexOf(s.Workspaces, func(w Workspace) bool { return w.ID == ev.ID })
	if found && s.Workspaces[idx] == next {
		return s, false
	}
	out := s.Clone()
	if found {
		out.Workspaces[idx] = next
	} else {
		out.Workspaces = append(out.Workspaces, next)
	}
	return out, true
}

// reduceWorkspaceRemoved deletes the workspace and every window indexed on
// it. A focused window sitting on the removed workspace is cleared; the
// adapter's next refresh reports the new focus.
func reduceWorkspaceRemoved(s Snapshot, ev event.WorkspaceRemoved) (Snapshot, bool) {
	_, _, found := lo.FindIndexOf(s.Workspaces, func(w Workspace) bool { return w.ID == ev.ID })
	if !found {
		return s, false
	}
	out := s.Clone()
	out.Workspaces = lo.Reject(out.Workspaces, func(w Workspace, _ int) bool { return w.ID == ev.ID })
	for id, win := range out.Windows {
		if win.WorkspaceID == ev.ID {
			delete(out.Windows, id)
		}
	}
	if out.FocusedWindow != nil && out.FocusedWindow.WorkspaceID == ev.ID {
		out.FocusedWindow = nil
	}
	return out, true
}

// reduceWindowClosed drops the window from the index and from the focused
// slot if it held it.
func reduceWindowClosed(s Snapshot, ev event.WindowClosed) (Snapshot, bool) {
	_, known := s.Windows[ev.ID]
	holdsFocus := s.FocusedWindow != nil && s.FocusedWindow.ID == ev.ID
	if !known && !holdsFocus {
		return s, false
	}
	out := s.Clone()
	delete(out.Windows, ev.ID)
	if holdsFocus {
		out.FocusedWindow = nil
	}
	return out, true
}

// reduceWindow always refreshes the secondary index; the focused-window
// field is touched only when the window sits on the focused workspace.
func reduceWindow(s Snapshot, ev event.WindowChanged) (Snapshot, bool) {
	next := Window(ev)
	onFocused := false
	if ws, ok := s.FocusedWorkspace(); ok {
		onFocused = ws.ID == ev.WorkspaceID
	}

	indexed, known := s.Windows[ev.ID]
	focusSame := !onFocused || (s.FocusedWindow != nil && *s.FocusedWindow == next)
	if known && indexed == next && focusSame {
		return s, false
	}

	out := s.Clone()
	out.Windows[ev.ID] = next
	if onFocused {
		w := next
		out.FocusedWindow = &w
	}
	return out, true
}
