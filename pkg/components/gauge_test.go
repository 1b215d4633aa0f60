package components

import (
	"strings"
	"testing"
)

func TestGaugeZeroPercent(t *testing.T) {
	g := NewGauge(DefaultGaugeStyle())
	result := g.Render(0, 100, 20)
	stripped := StripANSI(result)
	if !strings.Contains(stripped, "0%") {
		t.Errorf("expected 0%% label, got %q", stripped)
	}
	// Bar portion should have no block characters.
	for _, r := range stripped[:20] {
		if r >= '▁' && r <= '█' {
			t.Errorf("expected empty bar for 0%%, found block char %q in %q", string(r), stripped)
			break
		}
	}
}

func TestGaugeHundredPercent(t *testing.T) {
	g := NewGauge(DefaultGaugeStyle())
	result := g.Render(100, 100, 20)
	stripped := StripANSI(result)
	if !strings.Contains(stripped, "100%") {
		t.Errorf("expected 100%% label, got %q", stripped)
	}
	if n := strings.Count(stripped, string('█')); n != 20 {
		t.Errorf("expected 20 full blocks for 100%%, got %d in %q", n, stripped)
	}
}

func TestGaugeFiftyPercent(t *testing.T) {
	g := NewGauge(DefaultGaugeStyle())
	result := g.Render(50, 100, 20)
	stripped := StripANSI(result)
	if !strings.Contains(stripped, "50%") {
		t.Errorf("expected 50%% label, got %q", stripped)
	}
	if n := strings.Count(stripped, string('█')); n != 10 {
		t.Errorf("expected 10 full blocks for 50%%, got %d in %q", n, stripped)
	}
}

func TestGaugeSubCellOneEighth(t *testing.T) {
	// 12.5% of width=1 = 1 sub-unit = 1/8 block ▏.
	style := DefaultGaugeStyle()
	style.ShowPercent = false
	g := NewGauge(style)
	result := g.Render(12.5, 100, 1)
	if !strings.ContainsRune(StripANSI(result), '▏') {
		t.Errorf("expected 1/8 block for 12.5%% at width 1, got %q", StripANSI(result))
	}
}

func TestGaugeColorThresholds(t *testing.T) {
	g := NewGauge(DefaultGaugeStyle())
	cases := []struct {
		name  string
		value float64
		want  string // rgb fragment of the expected fill color
	}{
		{"normal", 30, "38;2;76;175;80"},    // #4CAF50
		{"warning", 75, "38;2;255;152;0"},   // #FF9800
		{"critical", 95, "38;2;244;67;54"},  // #F44336
	}
	for _, tc := range cases {
		result := g.Render(tc.value, 100, 20)
		if !strings.Contains(result, tc.want) {
			t.Errorf("%s: expected color %q in output for %.0f%%", tc.name, tc.want, tc.value)
		}
	}
}

func TestGaugeLabelAlignment(t *testing.T) {
	style := DefaultGaugeStyle()
	style.Label = "mem"
	style.LabelWidth = 6
	g := NewGauge(style)
	stripped := StripANSI(g.Render(50, 100, 10))
	if !strings.HasPrefix(stripped, "mem   ") {
		t.Errorf("expected 'mem   ' (6 char label area), got %q", stripped)
	}
}

func TestGaugeClamping(t *testing.T) {
	g := NewGauge(DefaultGaugeStyle())

	over := StripANSI(g.Render(150, 100, 20))
	if !strings.Contains(over, "100%") {
		t.Errorf("expected overflow clamped to 100%%, got %q", over)
	}
	if n := strings.Count(over, string('█')); n != 20 {
		t.Errorf("expected 20 full blocks for clamped overflow, got %d", n)
	}

	under := StripANSI(g.Render(-10, 100, 20))
	if !strings.Contains(under, "0%") {
		t.Errorf("expected negative clamped to 0%%, got %q", under)
	}
}

func TestGaugeZeroMaxValue(t *testing.T) {
	g := NewGauge(DefaultGaugeStyle())
	stripped := StripANSI(g.Render(50, 0, 20))
	if !strings.Contains(stripped, "0%") {
		t.Errorf("expected 0%% for maxValue=0, got %q", stripped)
	}
}

func TestGaugeBarWidth(t *testing.T) {
	style := DefaultGaugeStyle()
	style.ShowPercent = false
	g := NewGauge(style)
	for _, w := range []int{1, 10, 20, 40} {
		stripped := StripANSI(g.Render(50, 100, w))
		if got := len([]rune(stripped)); got != w {
			t.Errorf("width %d: expected %d visible chars, got %d in %q", w, w, got, stripped)
		}
	}
}
