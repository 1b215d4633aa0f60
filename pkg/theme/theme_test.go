package theme

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var thTestHexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// --- Get / Register / Names ---

func TestGetDefault(t *testing.T) {
	th := Get("default")
	if th.Name != "default" {
		t.Errorf("Get(\"default\").Name = %q, want %q", th.Name, "default")
	}
	if th.Accent != "#7C3AED" {
		t.Errorf("Get(\"default\").Accent = %q, want %q", th.Accent, "#7C3AED")
	}
}

func TestGetGruvbox(t *testing.T) {
	th := Get("gruvbox")
	if th.Name != "gruvbox" {
		t.Errorf("Get(\"gruvbox\").Name = %q, want %q", th.Name, "gruvbox")
	}
	if th.Background != "#282828" {
		t.Errorf("Get(\"gruvbox\").Background = %q, want %q", th.Background, "#282828")
	}
	if th.WorkspaceFocused != "#fe8019" {
		t.Errorf("Get(\"gruvbox\").WorkspaceFocused = %q, want %q", th.WorkspaceFocused, "#fe8019")
	}
}

func TestGetUnknownFallsBackToDefault(t *testing.T) {
	th := Get("unknown-theme-xyz")
	def := Get("default")
	if th.Name != def.Name {
		t.Errorf("Get(\"unknown\") = %q, want %q (default)", th.Name, def.Name)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) < 6 {
		t.Fatalf("Names() returned %d themes, want at least 6", len(names))
	}
	for _, want := range []string{"catppuccin", "default", "dracula", "gruvbox", "nord", "tokyo-night"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Names() missing builtin %q", want)
		}
	}
}

func TestRegisterCustomTheme(t *testing.T) {
	custom := Get("default")
	custom.Name = "Custom-Test"
	custom.Accent = "#123456"
	Register(custom)

	got := Get("custom-test")
	if got.Accent != "#123456" {
		t.Errorf("registered theme Accent = %q, want %q", got.Accent, "#123456")
	}
}

// --- Built-in theme completeness ---

func TestAllThemesHaveValidHexColors(t *testing.T) {
	for _, name := range Names() {
		th := Get(name)
		t.Run(name, func(t *testing.T) {
			colors := map[string]string{
				"Background":       th.Background,
				"Foreground":       th.Foreground,
				"Dim":              th.Dim,
				"Accent":           th.Accent,
				"Border":           th.Border,
				"BorderFocus":      th.BorderFocus,
				"Title":            th.Title,
				"StatusOK":         th.StatusOK,
				"StatusWarn":       th.StatusWarn,
				"StatusError":      th.StatusError,
				"StatusUnknown":    th.StatusUnknown,
				"WorkspaceFocused": th.WorkspaceFocused,
				"WorkspaceUrgent":  th.WorkspaceUrgent,
				"WorkspaceText":    th.WorkspaceText,
				"GaugeFilled":      th.GaugeFilled,
				"GaugeEmpty":       th.GaugeEmpty,
				"GaugeWarn":        th.GaugeWarn,
				"GaugeCrit":        th.GaugeCrit,
				"ChartLine":        th.ChartLine,
				"HelpKey":          th.HelpKey,
				"HelpDesc":         th.HelpDesc,
			}
			for field, value := range colors {
				if !thTestHexPattern.MatchString(value) {
					t.Errorf("%s = %q is not valid #RRGGBB", field, value)
				}
			}
		})
	}
}

// --- Derived styles ---

func TestStylesForeground(t *testing.T) {
	th := Get("default")
	st := th.Styles()

	if got := st.Text.GetForeground(); got != lipgloss.Color(th.Foreground) {
		t.Errorf("Text foreground = %v, want %v", got, th.Foreground)
	}
	if got := st.Error.GetForeground(); got != lipgloss.Color(th.StatusError) {
		t.Errorf("Error foreground = %v, want %v", got, th.StatusError)
	}
	if got := st.PillFocused.GetBackground(); got != lipgloss.Color(th.WorkspaceFocused) {
		t.Errorf("PillFocused background = %v, want %v", got, th.WorkspaceFocused)
	}
	if got := st.Banner.GetBackground(); got != lipgloss.Color(th.StatusError) {
		t.Errorf("Banner background = %v, want %v", got, th.StatusError)
	}
	if !st.Title.GetBold() {
		t.Error("Title style should be bold")
	}
}

func TestStylesPanelBorders(t *testing.T) {
	th := Get("nord")
	st := th.Styles()

	if got := st.Panel.GetBorderTopForeground(); got != lipgloss.Color(th.Border) {
		t.Errorf("Panel border = %v, want %v", got, th.Border)
	}
	if got := st.PanelFocus.GetBorderTopForeground(); got != lipgloss.Color(th.BorderFocus) {
		t.Errorf("PanelFocus border = %v, want %v", got, th.BorderFocus)
	}
}

// --- 256-color fallback ---

func TestTo256ColorPrimaries(t *testing.T) {
	cases := []struct {
		hex  string
		want string
	}{
		{"#ff0000", "196"}, // cube 5,0,0
		{"#00ff00", "46"},  // cube 0,5,0
		{"#000000", "16"},  // cube origin
		{"#ffffff", "231"}, // cube 5,5,5
		{"#808080", "244"}, // grayscale ramp beats cube
	}
	for _, tc := range cases {
		if got := thTo256Color(tc.hex); got != tc.want {
			t.Errorf("thTo256Color(%q) = %q, want %q", tc.hex, got, tc.want)
		}
	}
}

func TestNearestCubeIndexPrimaries(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    int
	}{
		{255, 0, 0, 196},
		{0, 255, 0, 46},
		{0, 0, 255, 21},
		{0, 0, 0, 16},
		{255, 255, 255, 231},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("(%d,%d,%d)", tt.r, tt.g, tt.b), func(t *testing.T) {
			got := thNearestCubeIndex(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("thNearestCubeIndex(%d,%d,%d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestAdaptConvertsColors(t *testing.T) {
	th := Get("default")
	adapted := Adapt(th, 8)

	if strings.HasPrefix(adapted.Background, "#") {
		t.Errorf("Adapt with colorDepth=8 should convert Background, got %q", adapted.Background)
	}
	if strings.HasPrefix(adapted.WorkspaceFocused, "#") {
		t.Errorf("Adapt with colorDepth=8 should convert WorkspaceFocused, got %q", adapted.WorkspaceFocused)
	}
	if strings.HasPrefix(adapted.StatusOK, "#") {
		t.Errorf("Adapt with colorDepth=8 should convert StatusOK, got %q", adapted.StatusOK)
	}
}

func TestAdaptPreservesAt24Bit(t *testing.T) {
	th := Get("default")
	adapted := Adapt(th, 24)

	if adapted.Background != th.Background {
		t.Errorf("Adapt(24bit) changed Background: %q -> %q", th.Background, adapted.Background)
	}
	if adapted.StatusError != th.StatusError {
		t.Errorf("Adapt(24bit) changed StatusError: %q -> %q", th.StatusError, adapted.StatusError)
	}
}

// --- TOML loading/saving ---

const thTestValidTOML = `
name = "custom"

[base]
background = "#111111"
foreground = "#eeeeee"
dim = "#666666"
accent = "#ff0000"

[panel]
border = "#333333"
border_focus = "#ff0000"
title = "#eeeeee"

[status]
ok = "#00ff00"
warn = "#ffff00"
error = "#ff0000"
unknown = "#888888"

[workspace]
focused = "#ff0000"
urgent = "#aa0000"
text = "#111111"

[gauge]
filled = "#00ff00"
empty = "#333333"
warn = "#ffff00"
crit = "#ff0000"

[chart]
line = "#ff0000"

[help]
key = "#ff0000"
desc = "#888888"
`

func TestLoadFromTOMLValid(t *testing.T) {
	th, err := LoadFromTOML([]byte(thTestValidTOML))
	if err != nil {
		t.Fatalf("LoadFromTOML() error: %v", err)
	}
	if th.Name != "custom" {
		t.Errorf("Name = %q, want %q", th.Name, "custom")
	}
	if th.Background != "#111111" {
		t.Errorf("Background = %q, want %q", th.Background, "#111111")
	}
	if th.WorkspaceUrgent != "#aa0000" {
		t.Errorf("WorkspaceUrgent = %q, want %q", th.WorkspaceUrgent, "#aa0000")
	}
}

func TestLoadFromTOMLMissingFieldsError(t *testing.T) {
	// Missing everything past [panel].
	data := []byte(`
name = "incomplete"

[base]
background = "#111111"
foreground = "#eeeeee"
dim = "#666666"
accent = "#ff0000"

[panel]
border = "#333333"
border_focus = "#ff0000"
title = "#eeeeee"
`)

	_, err := LoadFromTOML(data)
	if err == nil {
		t.Error("LoadFromTOML() should return error for missing fields")
	}
}

func TestLoadFromTOMLInvalidHexColor(t *testing.T) {
	data := strings.Replace(thTestValidTOML, `background = "#111111"`, `background = "not-a-color"`, 1)

	_, err := LoadFromTOML([]byte(data))
	if err == nil {
		t.Error("LoadFromTOML() should return error for invalid hex color")
	}
	if err != nil && !strings.Contains(err.Error(), "invalid hex color") {
		t.Errorf("error should mention invalid hex color, got: %v", err)
	}
}

func TestSaveToTOMLRoundtrip(t *testing.T) {
	original := Get("gruvbox")

	data, err := SaveToTOML(original)
	if err != nil {
		t.Fatalf("SaveToTOML() error: %v", err)
	}

	loaded, err := LoadFromTOML(data)
	if err != nil {
		t.Fatalf("LoadFromTOML(roundtrip) error: %v", err)
	}

	if loaded != original {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
}
