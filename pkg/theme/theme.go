// Package theme defines the color palettes for the status shell and
// derives the lipgloss styles the panel renderers share.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// Theme is a complete color palette. All values are "#RRGGBB" hex
// strings until Adapt converts them for low-color terminals.
type Theme struct {
	Name string

	// Base colors
	Background string
	Foreground string
	Dim        string
	Accent     string

	// Panel chrome
	Border      string // unfocused panel borders
	BorderFocus string // focused panel border
	Title       string // panel title text

	// Source health and alerts
	StatusOK      string // source connected
	StatusWarn    string
	StatusError   string // source down, critical battery
	StatusUnknown string

	// Workspace pills
	WorkspaceFocused string // background of the focused pill
	WorkspaceUrgent  string // background of an urgent pill
	WorkspaceText    string // pill text on a colored background

	// Meters (battery, volume, memory)
	GaugeFilled string
	GaugeEmpty  string
	GaugeWarn   string
	GaugeCrit   string

	// Load history sparkline
	ChartLine string

	// Help footer
	HelpKey  string
	HelpDesc string
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
)

func init() {
	thRegisterBuiltins()
}

// Get returns a named theme, falling back to the default if not found.
func Get(name string) Theme {
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := registry[strings.ToLower(name)]; ok {
		return t
	}
	return registry["default"]
}

// Register adds a theme under its lowercase name, replacing any existing
// theme of that name. User themes loaded from TOML go through here.
func Register(t Theme) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(t.Name)] = t
}

// Names returns all available theme names sorted alphabetically.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
