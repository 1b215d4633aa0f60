package components

import (
	"fmt"
	"math"
	"strings"
)

// Block characters for sub-cell precision (8 levels per cell).
var gaugeBlocks = [9]rune{
	' ',      // 0/8 empty
	'▏', // 1/8 ▏
	'▎', // 2/8 ▎
	'▍', // 3/8 ▍
	'▌', // 4/8 ▌
	'▋', // 5/8 ▋
	'▊', // 6/8 ▊
	'▉', // 7/8 ▉
	'█', // 8/8 █
}

// GaugeStyle configures the appearance of a horizontal bar gauge.
type GaugeStyle struct {
	Width             int     // total width in cells for the bar portion
	ShowPercent       bool    // show "73%" label after the bar
	Label             string  // optional left label (e.g. "mem")
	LabelWidth        int     // fixed width for the label area (0 = label + 1)
	FilledColor       string  // hex color for the filled portion
	EmptyColor        string  // hex color for the empty portion
	WarningThreshold  float64 // ratio (0-1) where the fill turns to warning
	CriticalThreshold float64 // ratio (0-1) where the fill turns to critical
	WarningColor      string
	CriticalColor     string
}

// Gauge renders a horizontal bar with sub-cell precision. The stats
// panel uses it for the memory meter.
type Gauge struct {
	style GaugeStyle
}

// DefaultGaugeStyle returns a GaugeStyle with sensible defaults.
func DefaultGaugeStyle() GaugeStyle {
	return GaugeStyle{
		Width:             20,
		ShowPercent:       true,
		FilledColor:       "#4CAF50",
		EmptyColor:        "#333333",
		WarningThreshold:  0.7,
		CriticalThreshold: 0.9,
		WarningColor:      "#FF9800",
		CriticalColor:     "#F44336",
	}
}

// NewGauge creates a new Gauge with the given style.
func NewGauge(style GaugeStyle) *Gauge {
	return &Gauge{style: style}
}

// Render renders the bar at the given width (overriding the style width
// for this call). value and maxValue define the fill ratio; the ratio is
// clamped to [0, 1].
func (g *Gauge) Render(value, maxValue float64, width int) string {
	if width <= 0 {
		width = g.style.Width
	}
	if width <= 0 {
		width = 20
	}

	ratio := 0.0
	if maxValue > 0 {
		ratio = value / maxValue
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	fillColor := g.style.FilledColor
	if g.style.WarningThreshold > 0 && ratio >= g.style.WarningThreshold {
		fillColor = g.style.WarningColor
	}
	if g.style.CriticalThreshold > 0 && ratio >= g.style.CriticalThreshold {
		fillColor = g.style.CriticalColor
	}

	var b strings.Builder

	if g.style.Label != "" {
		labelW := g.style.LabelWidth
		if labelW <= 0 {
			labelW = VisibleLen(g.style.Label) + 1
		}
		b.WriteString(PadRight(g.style.Label, labelW))
	}

	b.WriteString(gaugeBar(ratio, width, fillColor, g.style.EmptyColor))

	if g.style.ShowPercent {
		b.WriteString(fmt.Sprintf(" %d%%", int(math.Round(ratio*100))))
	}

	return b.String()
}

// gaugeBar builds the ANSI-colored bar string with sub-cell precision.
func gaugeBar(ratio float64, width int, fillColor, emptyColor string) string {
	totalUnits := width * 8
	filledUnits := int(math.Round(ratio * float64(totalUnits)))
	if filledUnits < 0 {
		filledUnits = 0
	}
	if filledUnits > totalUnits {
		filledUnits = totalUnits
	}

	fullCells := filledUnits / 8
	partialEighths := filledUnits % 8
	emptyCells := width - fullCells
	if partialEighths > 0 {
		emptyCells--
	}
	if emptyCells < 0 {
		emptyCells = 0
	}

	fgFill := Color(fillColor)
	bgEmpty := BgColor(emptyColor)
	fgEmpty := Color(emptyColor)

	var b strings.Builder

	// Full filled cells: fill-color foreground on empty-color background
	// so the boundary cell reads as a partial fill.
	if fullCells > 0 {
		b.WriteString(fgFill)
		b.WriteString(bgEmpty)
		b.WriteString(strings.Repeat(string(gaugeBlocks[8]), fullCells))
		b.WriteString(Reset())
	}

	if partialEighths > 0 {
		b.WriteString(fgFill)
		b.WriteString(bgEmpty)
		b.WriteRune(gaugeBlocks[partialEighths])
		b.WriteString(Reset())
	}

	if emptyCells > 0 {
		b.WriteString(fgEmpty)
		b.WriteString(strings.Repeat(" ", emptyCells))
		b.WriteString(Reset())
	}

	return b.String()
}
