package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ANSI 256 color palette
var (
	// Size tiers
	colorSmallGreen = lipgloss.Color("71")
	colorMidAmber   = lipgloss.Color("179")
	colorLargeRed   = lipgloss.Color("167")
	colorCriticalRd = lipgloss.Color("196")

	// Accent
	colorCyan = lipgloss.Color("73")
	colorGold = lipgloss.Color("220")

	// Text
	colorFg  = lipgloss.Color("253")
	colorDim = lipgloss.Color("242")

	// Selection
	colorSelBg = lipgloss.Color("238")
	colorSelFg = lipgloss.Color("255")

	colorSavings  = lipgloss.Color("71")  // reclaimable bytes
	colorKept     = lipgloss.Color("242") // bytes one copy still needs
	colorBarEmpty = lipgloss.Color("238") // ░ empty bar segments
	colorTableHdr = lipgloss.Color("245") // table header text
	colorRowAlt   = lipgloss.Color("234") // alternating row bg
)

// Left-border accent: flash bright/off, then fade out
var glowBorderColors = []lipgloss.Color{
	lipgloss.Color("46"),  // on
	lipgloss.Color("236"), // off
	lipgloss.Color("46"),  // on
	lipgloss.Color("236"), // off
	lipgloss.Color("46"),  // on
	lipgloss.Color("34"),  // fade
	lipgloss.Color("28"),  // fade
	lipgloss.Color("23"),  // fade
	lipgloss.Color("236"), // gone
}

// Braille spinner frames
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Unicode icons
const (
	iconRoot    = "▣"
	iconDup     = "◆"
	iconWarn    = "⚠"
	iconPackage = "□"
	iconBolt    = "⚡"
)

// Lipgloss styles
var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleName     = lipgloss.NewStyle().Foreground(colorFg).Bold(true)
	styleVersion  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarn     = lipgloss.NewStyle().Foreground(colorCriticalRd).Bold(true)
	styleAmber    = lipgloss.NewStyle().Foreground(colorMidAmber)
	styleSavings  = lipgloss.NewStyle().Foreground(colorSavings)
	styleBarEmpty = lipgloss.NewStyle().Foreground(colorBarEmpty)
	styleTableHdr = lipgloss.NewStyle().Foreground(colorTableHdr).Bold(true)

	styleKey       = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleActiveTab = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Underline(true)

	styleToastBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 1)
)

const (
	mib = 1 << 20
	gib = 1 << 30
)

// sizeColor picks a tier color for an install root or package size.
func sizeColor(size int64) lipgloss.Color {
	switch {
	case size >= gib:
		return colorCriticalRd
	case size >= 500*mib:
		return colorLargeRed
	case size >= 100*mib:
		return colorMidAmber
	default:
		return colorSmallGreen
	}
}

func renderSpinner(frame int) string {
	f := spinnerFrames[frame%len(spinnerFrames)]
	return lipgloss.NewStyle().Foreground(colorCyan).Render(f)
}

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "…")
}

// truncateLeft keeps the tail of a path, which is the part that tells
// install roots apart.
func truncateLeft(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return "…"
	}
	return "…" + ansi.TruncateLeft(s, w-maxWidth+1, "")
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func padLeft(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
