// Package panels provides the concrete panel implementations for the
// swaypulse dashboard. Each panel implements the panel.Panel interface,
// receives snapshots via the Elm-architecture Update loop, and issues
// desktop commands through panel.SubmitCmd.
package panels

import (
	"fmt"
	"strings"

	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/swaypulse/pkg/components"
	"gitlab.com/tinyland/lab/swaypulse/pkg/event"
	"gitlab.com/tinyland/lab/swaypulse/pkg/panel"
	"gitlab.com/tinyland/lab/swaypulse/pkg/theme"
)

// ZoneLayout is the bubblezone mark id for the clickable layout panel.
const ZoneLayout = "layout"

// ZoneWorkspace returns the bubblezone mark id for a workspace pill.
func ZoneWorkspace(id int64) string {
	return fmt.Sprintf("ws:%d", id)
}

// ZoneVolume returns the bubblezone mark id for one mixer channel row.
func ZoneVolume(ch event.Channel) string {
	return "vol:" + string(ch)
}

// Default assembles the standard panel stack in display order.
func Default(sink panel.Sink, zones *zone.Manager, th theme.Theme, criticalPercent int) []panel.Panel {
	return []panel.Panel{
		NewWorkspaces(sink, zones, th),
		NewWindow(th),
		NewVolume(sink, zones, th),
		NewBattery(th, criticalPercent),
		NewLayout(sink, zones, th),
		NewStats(th),
	}
}

// pnCenterMessage renders a centered message in the given area.
func pnCenterMessage(msg string, width, height int) string {
	lines := make([]string, height)
	midY := height / 2
	for i := range lines {
		if i == midY {
			vis := components.VisibleLen(msg)
			pad := (width - vis) / 2
			if pad < 0 {
				pad = 0
			}
			lines[i] = strings.Repeat(" ", pad) + msg
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// pnFitLines pads or truncates a slice of lines to fit exactly height
// lines, each no wider than width visible characters.
func pnFitLines(lines []string, width, height int) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if components.VisibleLen(line) > width {
			lines[i] = components.Truncate(line, width)
		}
	}
	return strings.Join(lines, "\n")
}
