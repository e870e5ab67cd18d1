package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// withBg applies a background color to a style when bg is non-empty.
func withBg(s lipgloss.Style, bg lipgloss.Color) lipgloss.Style {
	if bg != "" {
		return s.Background(bg)
	}
	return s
}

// renderHBar renders a single-color horizontal bar.
// Returns: "████░░░░" with value/maxValue proportion filled.
// Optional bgColor applies a background to each segment for consistent row backgrounds.
func renderHBar(value, maxValue int64, width int, fg lipgloss.Color, bgColor ...lipgloss.Color) string {
	if maxValue <= 0 || width <= 0 {
		return ""
	}
	var bg lipgloss.Color
	if len(bgColor) > 0 {
		bg = bgColor[0]
	}
	value = min(max(value, 0), maxValue)

	filled := int(value * int64(width) / maxValue)
	if filled == 0 && value > 0 {
		filled = 1
	}
	empty := width - filled

	var b strings.Builder
	if filled > 0 {
		b.WriteString(withBg(lipgloss.NewStyle().Foreground(fg), bg).Render(strings.Repeat("█", filled)))
	}
	if empty > 0 {
		b.WriteString(withBg(styleBarEmpty, bg).Render(strings.Repeat("░", empty)))
	}
	return b.String()
}

// renderSavingsBar splits a duplicate group's total into the part that
// could be reclaimed and the single copy that must stay.
func renderSavingsBar(savings, total int64, width int, bgColor ...lipgloss.Color) string {
	var bg lipgloss.Color
	if len(bgColor) > 0 {
		bg = bgColor[0]
	}

	if total <= 0 || width <= 0 {
		return withBg(styleBarEmpty, bg).Render(strings.Repeat("░", max(width, 0)))
	}

	savedW := int(min(max(savings, 0), total) * int64(width) / total)
	keptW := width - savedW

	var b strings.Builder
	if savedW > 0 {
		b.WriteString(withBg(styleSavings, bg).Render(strings.Repeat("█", savedW)))
	}
	if keptW > 0 {
		b.WriteString(withBg(lipgloss.NewStyle().Foreground(colorKept), bg).Render(strings.Repeat("▒", keptW)))
	}
	return b.String()
}
