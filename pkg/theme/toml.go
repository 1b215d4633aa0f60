package theme

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// thTOMLTheme is the TOML-serializable representation of a Theme.
type thTOMLTheme struct {
	Name      string          `toml:"name"`
	Base      thTOMLBase      `toml:"base"`
	Panel     thTOMLPanel     `toml:"panel"`
	Status    thTOMLStatus    `toml:"status"`
	Workspace thTOMLWorkspace `toml:"workspace"`
	Gauge     thTOMLGauge     `toml:"gauge"`
	Chart     thTOMLChart     `toml:"chart"`
	Help      thTOMLHelp      `toml:"help"`
}

type thTOMLBase struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Dim        string `toml:"dim"`
	Accent     string `toml:"accent"`
}

type thTOMLPanel struct {
	Border      string `toml:"border"`
	BorderFocus string `toml:"border_focus"`
	Title       string `toml:"title"`
}

type thTOMLStatus struct {
	OK      string `toml:"ok"`
	Warn    string `toml:"warn"`
	Error   string `toml:"error"`
	Unknown string `toml:"unknown"`
}

type thTOMLWorkspace struct {
	Focused string `toml:"focused"`
	Urgent  string `toml:"urgent"`
	Text    string `toml:"text"`
}

type thTOMLGauge struct {
	Filled string `toml:"filled"`
	Empty  string `toml:"empty"`
	Warn   string `toml:"warn"`
	Crit   string `toml:"crit"`
}

type thTOMLChart struct {
	Line string `toml:"line"`
}

type thTOMLHelp struct {
	Key  string `toml:"key"`
	Desc string `toml:"desc"`
}

var thHexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFile reads and parses a TOML theme definition from path.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: read %s: %w", path, err)
	}
	return LoadFromTOML(data)
}

// LoadFromTOML parses a TOML theme definition from raw bytes.
func LoadFromTOML(data []byte) (Theme, error) {
	var tt thTOMLTheme
	if err := toml.Unmarshal(data, &tt); err != nil {
		return Theme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}

	t := Theme{
		Name:       tt.Name,
		Background: tt.Base.Background,
		Foreground: tt.Base.Foreground,
		Dim:        tt.Base.Dim,
		Accent:     tt.Base.Accent,

		Border:      tt.Panel.Border,
		BorderFocus: tt.Panel.BorderFocus,
		Title:       tt.Panel.Title,

		StatusOK:      tt.Status.OK,
		StatusWarn:    tt.Status.Warn,
		StatusError:   tt.Status.Error,
		StatusUnknown: tt.Status.Unknown,

		WorkspaceFocused: tt.Workspace.Focused,
		WorkspaceUrgent:  tt.Workspace.Urgent,
		WorkspaceText:    tt.Workspace.Text,

		GaugeFilled: tt.Gauge.Filled,
		GaugeEmpty:  tt.Gauge.Empty,
		GaugeWarn:   tt.Gauge.Warn,
		GaugeCrit:   tt.Gauge.Crit,

		ChartLine: tt.Chart.Line,

		HelpKey:  tt.Help.Key,
		HelpDesc: tt.Help.Desc,
	}

	if err := thValidateTheme(t); err != nil {
		return Theme{}, err
	}

	return t, nil
}

// SaveToTOML serializes a theme to TOML bytes. Users start custom themes
// from a dumped builtin.
func SaveToTOML(t Theme) ([]byte, error) {
	tt := thTOMLTheme{
		Name: t.Name,
		Base: thTOMLBase{
			Background: t.Background,
			Foreground: t.Foreground,
			Dim:        t.Dim,
			Accent:     t.Accent,
		},
		Panel: thTOMLPanel{
			Border:      t.Border,
			BorderFocus: t.BorderFocus,
			Title:       t.Title,
		},
		Status: thTOMLStatus{
			OK:      t.StatusOK,
			Warn:    t.StatusWarn,
			Error:   t.StatusError,
			Unknown: t.StatusUnknown,
		},
		Workspace: thTOMLWorkspace{
			Focused: t.WorkspaceFocused,
			Urgent:  t.WorkspaceUrgent,
			Text:    t.WorkspaceText,
		},
		Gauge: thTOMLGauge{
			Filled: t.GaugeFilled,
			Empty:  t.GaugeEmpty,
			Warn:   t.GaugeWarn,
			Crit:   t.GaugeCrit,
		},
		Chart: thTOMLChart{
			Line: t.ChartLine,
		},
		Help: thTOMLHelp{
			Key:  t.HelpKey,
			Desc: t.HelpDesc,
		},
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(tt); err != nil {
		return nil, fmt.Errorf("theme: encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// thValidateTheme checks that all required color fields are present and
// valid hex.
func thValidateTheme(t Theme) error {
	if t.Name == "" {
		return fmt.Errorf("theme: missing required field %q", "name")
	}

	colorFields := map[string]string{
		"background":        t.Background,
		"foreground":        t.Foreground,
		"dim":               t.Dim,
		"accent":            t.Accent,
		"border":            t.Border,
		"border_focus":      t.BorderFocus,
		"title":             t.Title,
		"status_ok":         t.StatusOK,
		"status_warn":       t.StatusWarn,
		"status_error":      t.StatusError,
		"status_unknown":    t.StatusUnknown,
		"workspace_focused": t.WorkspaceFocused,
		"workspace_urgent":  t.WorkspaceUrgent,
		"workspace_text":    t.WorkspaceText,
		"gauge_filled":      t.GaugeFilled,
		"gauge_empty":       t.GaugeEmpty,
		"gauge_warn":        t.GaugeWarn,
		"gauge_crit":        t.GaugeCrit,
		"chart_line":        t.ChartLine,
		"help_key":          t.HelpKey,
		"help_desc":         t.HelpDesc,
	}

	for field, value := range colorFields {
		if value == "" {
			return fmt.Errorf("theme: missing required field %q", field)
		}
		if !thHexColorRegex.MatchString(value) {
			return fmt.Errorf("theme: invalid hex color %q for field %q (expected #RRGGBB)", value, field)
		}
	}

	return nil
}
