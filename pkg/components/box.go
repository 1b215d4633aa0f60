package components

import "strings"

// Rounded box-drawing characters. The panel chrome only ever uses this
// one border set, so the style knobs are just title and color.
const (
	boxTopLeft     = "╭"
	boxTopRight    = "╮"
	boxBottomLeft  = "╰"
	boxBottomRight = "╯"
	boxHorizontal  = "─"
	boxVertical    = "│"
)

// Box renders content inside a rounded border with an optional title
// embedded in the top edge.
type Box struct {
	Title string
	FG    string // border color, hex like "#ff5500"; empty = uncolored
}

// Render draws the box at the given outer dimensions. Content lines are
// truncated or padded to the interior width; missing lines are filled
// with blanks. Returns "" when the box cannot fit its own borders.
func (b Box) Render(content string, width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}

	pre, suf := "", ""
	if b.FG != "" {
		pre, suf = Color(b.FG), Reset()
	}

	interiorW := width - 2
	interiorH := height - 2

	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}

	var buf strings.Builder
	buf.WriteString(pre)
	buf.WriteString(boxTopLeft)
	buf.WriteString(boxTitleBar(b.Title, interiorW, pre, suf))
	buf.WriteString(pre)
	buf.WriteString(boxTopRight)
	buf.WriteString(suf)
	buf.WriteByte('\n')

	for i := 0; i < interiorH; i++ {
		buf.WriteString(pre)
		buf.WriteString(boxVertical)
		buf.WriteString(suf)
		if i < len(lines) {
			buf.WriteString(boxFitLine(lines[i], interiorW))
		} else {
			buf.WriteString(strings.Repeat(" ", interiorW))
		}
		buf.WriteString(pre)
		buf.WriteString(boxVertical)
		buf.WriteString(suf)
		buf.WriteByte('\n')
	}

	buf.WriteString(pre)
	buf.WriteString(boxBottomLeft)
	buf.WriteString(strings.Repeat(boxHorizontal, interiorW))
	buf.WriteString(boxBottomRight)
	buf.WriteString(suf)

	return buf.String()
}

// boxTitleBar renders the top edge with the title embedded after one
// horizontal char, or a plain edge when the title is empty or the bar
// is too narrow to hold it.
func boxTitleBar(title string, barWidth int, pre, suf string) string {
	if barWidth <= 0 {
		return ""
	}

	maxTitle := barWidth - 4 // leading char + space + title + space + trailing char
	if title == "" || maxTitle <= 0 {
		return pre + strings.Repeat(boxHorizontal, barWidth) + suf
	}

	if VisibleLen(title) > maxTitle {
		title = TruncateWithTail(title, maxTitle, "…")
	}
	seg := " " + title + " "
	rest := barWidth - VisibleLen(seg) - 1

	var buf strings.Builder
	buf.WriteString(pre)
	buf.WriteString(boxHorizontal)
	buf.WriteString(suf)
	buf.WriteString(seg)
	buf.WriteString(pre)
	buf.WriteString(strings.Repeat(boxHorizontal, rest))
	buf.WriteString(suf)
	return buf.String()
}

// boxFitLine truncates or right-pads a content line to exactly width
// visible characters.
func boxFitLine(line string, width int) string {
	if width <= 0 {
		return ""
	}
	vis := VisibleLen(line)
	if vis > width {
		return Truncate(line, width)
	}
	if vis < width {
		return PadRight(line, width)
	}
	return line
}
