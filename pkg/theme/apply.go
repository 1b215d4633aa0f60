package theme

import "github.com/charmbracelet/lipgloss"

// Styles bundles the lipgloss styles the panel renderers share.
// Derived once per theme change, not per frame.
type Styles struct {
	Text  lipgloss.Style
	Dim   lipgloss.Style
	Title lipgloss.Style

	Panel      lipgloss.Style // unfocused panel box
	PanelFocus lipgloss.Style // focused panel box

	OK      lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Unknown lipgloss.Style

	Pill        lipgloss.Style // workspace pill, neither focused nor urgent
	PillFocused lipgloss.Style
	PillUrgent  lipgloss.Style

	Banner lipgloss.Style // full-width critical alert

	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// Styles derives the lipgloss styles for the theme.
func (t Theme) Styles() Styles {
	border := lipgloss.RoundedBorder()
	return Styles{
		Text:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Foreground)),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Dim)),
		Title: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Title)).Bold(true),

		Panel: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		PanelFocus: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(0, 1),

		OK:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusOK)),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusWarn)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusError)),
		Unknown: lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusUnknown)),

		Pill: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Foreground)).
			Padding(0, 1),
		PillFocused: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.WorkspaceText)).
			Background(lipgloss.Color(t.WorkspaceFocused)).
			Bold(true).
			Padding(0, 1),
		PillUrgent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.WorkspaceText)).
			Background(lipgloss.Color(t.WorkspaceUrgent)).
			Bold(true).
			Padding(0, 1),

		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Background)).
			Background(lipgloss.Color(t.StatusError)).
			Bold(true).
			Align(lipgloss.Center),

		HelpKey:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.HelpKey)),
		HelpDesc: lipgloss.NewStyle().Foreground(lipgloss.Color(t.HelpDesc)),
	}
}
