package tui

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/state"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// tuiDomainOrder fixes the footer health-dot order.
var tuiDomainOrder = []event.Domain{
	event.DomainSway,
	event.DomainPower,
	event.DomainVolume,
	event.DomainLayout,
	event.DomainStats,
}

// tuiRenderFrame composes the full frame: critical banner, the panel
// stack, and the footer. The help page replaces the stack while open.
func tuiRenderFrame(m Model) string {
	var rows []string
	avail := m.height - 1 // footer

	if m.snap.Power.Critical(m.criticalPercent) {
		rows = append(rows, m.styles.Banner.Width(m.width).Render("Connect power NOW!"))
		avail--
	}

	if m.help {
		rows = append(rows, tuiRenderHelp(m.styles, m.width, avail))
	} else {
		rows = append(rows, tuiRenderStack(m, avail)...)
	}

	var lines []string
	if len(rows) > 0 {
		lines = strings.Split(strings.Join(rows, "\n"), "\n")
	}
	for len(lines) < m.height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, tuiRenderFooter(m))
	return strings.Join(lines, "\n")
}

// tuiRenderStack renders the panels top to bottom, each in a titled box
// at its preferred height, until the available rows run out.
func tuiRenderStack(m Model, avail int) []string {
	var rows []string
	for i, p := range m.panels {
		_, minH := p.MinSize()
		outerH := minH + 2
		if outerH > avail {
			break
		}

		title := p.Title()
		if d, ok := tuiPanelDomain(p.ID()); ok && tuiStale(m.snap, d) {
			title += " ~"
		}

		fg := m.th.Border
		if i == m.focused {
			fg = m.th.BorderFocus
		}

		box := components.Box{Title: title, FG: fg}
		rows = append(rows, box.Render(p.View(m.width-2, minH), m.width, outerH))
		avail -= outerH
	}
	return rows
}

// tuiRenderFooter renders the one-line status bar: transient messages
// (command errors, the volume flash) on the left, revision, drop counter
// and per-domain health dots on the right.
func tuiRenderFooter(m Model) string {
	left := "q:quit  tab:focus  ?:help"
	switch {
	case m.flash != "":
		left = m.styles.Warn.Bold(true).Render(m.flash)
	case m.statusMsg != "":
		left = m.styles.Error.Render(m.statusMsg)
	default:
		left = m.styles.Dim.Render(left)
	}

	right := m.styles.Dim.Render(fmt.Sprintf("rev %d  drops %d ", m.rev, m.backend.Drops())) +
		tuiHealthDots(m.styles, m.snap)

	gap := m.width - components.VisibleLen(left) - components.VisibleLen(right)
	if gap < 1 {
		return components.Truncate(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// tuiHealthDots renders one dot per domain: green when live, red when
// down, dim before the first report.
func tuiHealthDots(st theme.Styles, snap state.Snapshot) string {
	var buf strings.Builder
	for _, d := range tuiDomainOrder {
		live, seen := snap.Health[d]
		switch {
		case !seen:
			buf.WriteString(st.Unknown.Render("●"))
		case live:
			buf.WriteString(st.OK.Render("●"))
		default:
			buf.WriteString(st.Error.Render("●"))
		}
	}
	return buf.String()
}

// tuiRenderHelp renders the centered key reference page.
func tuiRenderHelp(st theme.Styles, width, height int) string {
	bindings := [][2]string{
		{"tab / shift+tab", "cycle panel focus"},
		{"1-9, 0", "focus workspace (0 = 10)"},
		{"+ / -", "volume up / down"},
		{"m", "toggle mute"},
		{"l", "next keyboard layout"},
		{"click", "focus workspace, toggle mute, cycle layout"},
		{"wheel", "volume up / down over the mixer"},
		{"?", "toggle this help"},
		{"q", "quit"},
	}

	keyW := 0
	for _, b := range bindings {
		if len(b[0]) > keyW {
			keyW = len(b[0])
		}
	}

	var lines []string
	for _, b := range bindings {
		lines = append(lines,
			st.HelpKey.Render(components.PadRight(b[0], keyW))+"  "+st.HelpDesc.Render(b[1]))
	}
	content := strings.Join(lines, "\n")

	boxW := keyW + 2 + 44 + 4
	if boxW > width {
		boxW = width
	}
	boxH := len(bindings) + 2
	if boxH > height {
		boxH = height
	}

	box := components.Box{Title: "Keys"}.Render(content, boxW, boxH)

	// Center horizontally.
	pad := (width - boxW) / 2
	if pad <= 0 {
		return box
	}
	indent := strings.Repeat(" ", pad)
	out := make([]string, 0, boxH)
	for _, line := range strings.Split(box, "\n") {
		out = append(out, indent+line)
	}
	return strings.Join(out, "\n")
}

// tuiFlashText is the transient footer readout for a volume change.
func tuiFlashText(ch event.Channel, vs state.VolumeState) string {
	if vs.Muted {
		return fmt.Sprintf("%s muted", ch)
	}
	return fmt.Sprintf("%s %d%%", ch, vs.Level)
}

// tuiPanelDomain maps a panel id to the event domain whose liveness it
// reflects, for the stale marker in the panel title.
func tuiPanelDomain(id string) (event.Domain, bool) {
	switch id {
	case "workspaces", "window":
		return event.DomainSway, true
	case "volume":
		return event.DomainVolume, true
	case "battery":
		return event.DomainPower, true
	case "layout":
		return event.DomainLayout, true
	case "stats":
		return event.DomainStats, true
	}
	return "", false
}

// tuiStale reports whether a domain has reported at least once and is
// currently down. Unreported domains render as empty, not stale.
func tuiStale(snap state.Snapshot, d event.Domain) bool {
	live, seen := snap.Health[d]
	return seen && !live
}
