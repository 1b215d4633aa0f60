package components

import (
	"fmt"
	"math"
	"strings"
)

// Sparkline block characters: 8 vertical levels per cell.
var sparkBlocks = [8]rune{
	'▁', // 1/8 ▁
	'▂', // 2/8 ▂
	'▃', // 3/8 ▃
	'▄', // 4/8 ▄
	'▅', // 5/8 ▅
	'▆', // 6/8 ▆
	'▇', // 7/8 ▇
	'█', // 8/8 █
}

// SparklineStyle configures the appearance of a sparkline.
type SparklineStyle struct {
	Width      int      // number of cells to display
	Color      string   // hex color for the sparkline
	ShowMinMax bool     // show min/max values flanking the sparkline
	MinY       *float64 // optional fixed minimum Y (nil = auto-scale)
	MaxY       *float64 // optional fixed maximum Y (nil = auto-scale)
	Label      string   // optional prefix label
}

// Sparkline renders an inline history chart using Unicode block
// elements. The stats panel uses it for the load-average history.
type Sparkline struct {
	style SparklineStyle
}

// DefaultSparklineStyle returns a SparklineStyle with sensible defaults.
func DefaultSparklineStyle() SparklineStyle {
	return SparklineStyle{
		Width: 20,
		Color: "#64B5F6",
	}
}

// NewSparkline creates a new Sparkline with the given style.
func NewSparkline(style SparklineStyle) *Sparkline {
	return &Sparkline{style: style}
}

// Render renders the last `width` points of data as one line. The width
// parameter overrides the style width for this call.
func (s *Sparkline) Render(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	if width <= 0 {
		width = s.style.Width
	}
	if width <= 0 {
		width = 20
	}

	points := data
	if len(points) > width {
		points = points[len(points)-width:]
	}

	minY, maxY := sparkAutoRange(points)
	if s.style.MinY != nil {
		minY = *s.style.MinY
	}
	if s.style.MaxY != nil {
		maxY = *s.style.MaxY
	}

	colored := sparkColorize(sparkMapToBlocks(points, minY, maxY), s.style.Color)

	var b strings.Builder

	if s.style.Label != "" {
		b.WriteString(s.style.Label)
		b.WriteString(" ")
	}
	if s.style.ShowMinMax {
		b.WriteString(sparkFormatValue(minY))
		b.WriteString(" ")
	}
	b.WriteString(colored)
	if s.style.ShowMinMax {
		b.WriteString(" ")
		b.WriteString(sparkFormatValue(maxY))
	}

	return b.String()
}

// sparkAutoRange finds the min and max values in a data slice.
func sparkAutoRange(data []float64) (minY, maxY float64) {
	if len(data) == 0 {
		return 0, 0
	}
	minY = data[0]
	maxY = data[0]
	for _, v := range data[1:] {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}
	return minY, maxY
}

// sparkMapToBlocks maps data values to block characters based on the Y range.
func sparkMapToBlocks(data []float64, minY, maxY float64) string {
	var b strings.Builder
	rangeY := maxY - minY

	for _, v := range data {
		var idx int
		if rangeY <= 0 {
			// All values equal: render at mid-height.
			idx = 3
		} else {
			normalized := (v - minY) / rangeY
			if normalized < 0 {
				normalized = 0
			}
			if normalized > 1 {
				normalized = 1
			}
			idx = int(math.Round(normalized * 7))
			if idx > 7 {
				idx = 7
			}
		}
		b.WriteRune(sparkBlocks[idx])
	}

	return b.String()
}

// sparkColorize wraps the sparkline string in ANSI color escapes.
func sparkColorize(s, hexColor string) string {
	fg := Color(hexColor)
	if fg == "" {
		return s
	}
	return fg + s + Reset()
}

// sparkFormatValue formats a float64 for compact display in min/max labels.
func sparkFormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
