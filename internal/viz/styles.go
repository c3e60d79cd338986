package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(42)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	keyHint    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true).MarginTop(1)
)

func statusStyle(t Theme, running, degenerate bool) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch {
	case degenerate:
		return s.Foreground(t.Error)
	case running:
		return s.Foreground(t.Success)
	default:
		return s.Foreground(t.Warning)
	}
}

// GradientText colours each rune of text along an HCL blend from start to
// end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	from, to := parseColor(start), parseColor(end)
	var b strings.Builder
	for i, r := range runes {
		f := 0.0
		if len(runes) > 1 {
			f = float64(i) / float64(len(runes)-1)
		}
		c := lipgloss.Color(from.BlendHcl(to, f).Clamped().Hex())
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r)))
	}
	return b.String()
}


