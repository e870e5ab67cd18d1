package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/jackchuka/depsweep/internal/model"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.showHelp {
		sections = append(sections, m.renderHelp())
		return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top,
			strings.Join(sections, "\n"))
	}

	sections = append(sections, m.renderSummaryPanel())
	sections = append(sections, m.renderTable())
	sections = append(sections, m.renderFooter())

	view := lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top,
		strings.Join(sections, "\n"))

	// Overlay toasts on the view (bottom-right with padding)
	if len(m.toasts) > 0 {
		toast := m.renderToasts()
		tw := lipgloss.Width(toast)
		th := lipgloss.Height(toast)
		x := m.width - tw - 2
		y := m.height - th - 2
		view = placeOverlay(x, y, toast, view)
	}

	return view
}

func byteSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true).Render("depsweep")

	var spinner string
	if m.phase == PhaseScanning {
		spinner = "  " + renderSpinner(m.anim.frame) + " Scanning..."
	}

	// Spaced stats: dim label + bold colored number
	s := m.summary
	bold := lipgloss.NewStyle().Bold(true)
	stats := styleDim.Render("roots ") + bold.Foreground(lipgloss.Color("255")).Render(fmt.Sprintf("%d", s.TotalRoots))
	stats += "  " + styleDim.Render("size ") + bold.Foreground(sizeColor(s.TotalSize)).Render(byteSize(s.TotalSize))
	if s.Duplicates > 0 {
		stats += "  " + styleDim.Render("dupes ") + bold.Foreground(colorMidAmber).Render(fmt.Sprintf("%d", s.Duplicates))
	}
	if s.Errors > 0 {
		stats += "  " + styleDim.Render("errors ") + bold.Foreground(colorLargeRed).Render(fmt.Sprintf("%d", s.Errors))
	}

	// Filter display
	left := title + spinner
	if m.filterMode {
		left += "  " + m.filterInput.View()
	} else if m.filterText != "" {
		left += "  " + styleDim.Render("filter: "+m.filterText)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(stats)
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + stats
	sep := styleDim.Render(strings.Repeat("─", m.width))

	return line + "\n" + sep
}

// --- Summary panel ---

func (m *Model) renderSummaryPanel() string {
	s := m.summary
	if s.TotalRoots == 0 {
		return ""
	}

	barW := 12

	// Largest roots by share of the total
	largest := make([]model.InstallRoot, len(m.roots))
	copy(largest, m.roots)
	model.SortBySize(largest)
	if len(largest) > 3 {
		largest = largest[:3]
	}
	sizeCol := styleTableHdr.Render("LARGEST")
	for _, r := range largest {
		label := padRight(" "+truncateWithEllipsis(r.DisplayName(), 14), 16)
		sizeCol += "\n" + styleName.Render(label) + renderHBar(r.Size, s.TotalSize, barW, sizeColor(r.Size)) +
			styleDim.Render(" "+byteSize(r.Size))
	}

	reclaim := styleTableHdr.Render("DUPLICATES") + "\n"
	reclaim += styleAmber.Render(fmt.Sprintf(" packages %4d ", s.Duplicates)) + "\n"
	reclaim += styleSavings.Render(" saving "+padLeft(byteSize(s.Savings), 8)+" ") +
		renderHBar(s.Savings, s.TotalSize, barW, colorSavings) + "\n"
	reclaim += styleDim.Render(fmt.Sprintf(" of %s total", byteSize(s.TotalSize)))

	scanCol := styleTableHdr.Render("SCAN") + "\n"
	scanCol += styleDim.Render(fmt.Sprintf(" packages %d", s.TotalPackages)) + "\n"
	scanCol += styleDim.Render(" took "+s.Duration.Round(time.Millisecond).String()) + "\n"
	if s.Errors > 0 {
		scanCol += styleWarn.Render(fmt.Sprintf(" %s %d unreadable", iconWarn, s.Errors))
	} else {
		scanCol += styleSavings.Render(" no errors")
	}

	gap := "   "
	panel := lipgloss.JoinHorizontal(lipgloss.Top, sizeCol, gap, reclaim, gap, scanCol)

	sep := styleDim.Render(strings.Repeat("─", m.width))
	return panel + "\n" + sep
}

// --- Table ---

func (m *Model) renderTable() string {
	visRows := m.visibleRows()
	tableHeight := visRows + 1 // +1 for header

	if len(m.rows) == 0 {
		msg := "No install roots found"
		switch {
		case m.filterText != "":
			msg = "Nothing matches filter"
		case m.view == ViewDupes:
			msg = "No duplicate packages"
		}
		content := "\n " + styleDim.Render(msg)
		// Pad to fill table area so footer stays at bottom
		lines := strings.Split(content, "\n")
		for len(lines) < tableHeight {
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n")
	}

	contentWidth := m.width
	detailWidth := 0
	if m.showDetail && m.width >= 100 {
		detailWidth = m.width * 35 / 100
		contentWidth = m.width - detailWidth - 1
	}

	cols := computeColumns(contentWidth)

	var hdr string
	if m.view == ViewDupes {
		hdr = " " +
			styleTableHdr.Render(padRight("PACKAGE", cols.name)) +
			styleTableHdr.Render(padRight("VERSIONS", cols.path)) +
			styleTableHdr.Render(padRight("COPIES", cols.count)) +
			styleTableHdr.Render(padRight("TOTAL", cols.when)) +
			styleTableHdr.Render(padRight("SAVINGS", cols.size))
	} else {
		hdr = " " +
			styleTableHdr.Render(padRight("PROJECT", cols.name)) +
			styleTableHdr.Render(padRight("PATH", cols.path)) +
			styleTableHdr.Render(padRight("PKGS", cols.count)) +
			styleTableHdr.Render(padRight("MODIFIED", cols.when)) +
			styleTableHdr.Render(padRight("SIZE", cols.size))
	}

	// Keep cursor in view
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visRows {
		m.scrollOffset = m.cursor - visRows + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}

	end := m.scrollOffset + visRows
	if end > len(m.rows) {
		end = len(m.rows)
	}

	var tableLines []string
	tableLines = append(tableLines, hdr)

	// Bars in the size column scale to the largest visible row
	var maxSize int64 = 1
	for _, row := range m.rows {
		switch {
		case row.Root != nil:
			maxSize = max(maxSize, row.Root.Size)
		case row.Dup != nil:
			maxSize = max(maxSize, row.Dup.PotentialSavings)
		}
	}

	now := time.Now()
	for i := m.scrollOffset; i < end; i++ {
		line := m.renderTableRow(m.rows[i], cols, i == m.cursor, i%2 == 1, maxSize, contentWidth, now)
		tableLines = append(tableLines, line)
	}

	// Pad table to fill available height so footer stays at bottom
	for len(tableLines) < tableHeight {
		tableLines = append(tableLines, "")
	}

	tableContent := strings.Join(tableLines, "\n")

	// Detail panel
	if detailWidth > 0 {
		detail := m.renderDetailPanel(detailWidth, tableHeight)
		sepLines := make([]string, tableHeight)
		for i := range sepLines {
			sepLines[i] = styleDim.Render("│")
		}
		sep := strings.Join(sepLines, "\n")
		return lipgloss.JoinHorizontal(lipgloss.Top, tableContent, sep, detail)
	}

	return tableContent
}

type columnWidths struct {
	name  int
	path  int
	count int
	when  int
	size  int
}

func computeColumns(width int) columnWidths {
	// Allocate proportionally, minimum widths
	usable := width - 2 // leading space + margin
	if usable < 40 {
		usable = 40
	}

	c := columnWidths{
		name:  usable * 22 / 100,
		path:  usable * 36 / 100,
		count: usable * 8 / 100,
		when:  usable * 12 / 100,
		size:  usable * 22 / 100,
	}

	// Minimum widths
	if c.name < 10 {
		c.name = 10
	}
	if c.count < 7 {
		c.count = 7
	}
	if c.when < 9 {
		c.when = 9
	}

	return c
}

// --- Row rendering ---

// rowRenderer holds per-row styling state shared across cell renderers.
type rowRenderer struct {
	bg      func(lipgloss.Style) lipgloss.Style
	rowBg   lipgloss.Style
	hasGlow bool
	bgColor lipgloss.Color // empty when no row background
	prefix  string         // prepended to the row (border/dot styles)
}

func (m *Model) newRowRenderer(path string, selected, alt bool) rowRenderer {
	step, hasGlow := m.anim.glowFade[path]

	var bgColor lipgloss.Color
	if selected {
		bgColor = colorSelBg
	} else if alt {
		bgColor = colorRowAlt
	}

	bg := func(base lipgloss.Style) lipgloss.Style {
		if bgColor != "" {
			return base.Background(bgColor)
		}
		return base
	}

	var prefix string
	if hasGlow {
		prefix = lipgloss.NewStyle().Foreground(glowBorderColors[step]).Render("▎")
	}

	return rowRenderer{
		bg:      bg,
		rowBg:   bg(lipgloss.NewStyle()),
		hasGlow: hasGlow,
		bgColor: bgColor,
		prefix:  prefix,
	}
}

func (r rowRenderer) nameCell(icon, name string, iconStyle lipgloss.Style, width int, selected bool) string {
	nameStyle := r.bg(styleName)
	if selected && !r.hasGlow {
		nameStyle = nameStyle.Foreground(colorSelFg)
	}
	name = truncateWithEllipsis(name, width-3)
	return r.rowBg.Width(width).Render(r.bg(iconStyle).Render(icon) + r.rowBg.Render(" ") + nameStyle.Render(name))
}

func (r rowRenderer) textCell(s string, style lipgloss.Style, width int) string {
	return r.bg(style).Width(width).Render(s)
}

func (r rowRenderer) sizeCell(size, maxSize int64, width int) string {
	label := byteSize(size)
	barW := width - 10
	if barW < 3 {
		barW = 3
	}
	bar := renderHBar(size, maxSize, barW, sizeColor(size), r.bgColor)
	return r.rowBg.Width(width).Render(bar + r.rowBg.Render(" ") + r.bg(styleDim).Render(label))
}

func (r rowRenderer) savingsCell(g *model.DuplicateGroup, width int) string {
	barW := width - 10
	if barW < 3 {
		barW = 3
	}
	bar := renderSavingsBar(g.PotentialSavings, g.TotalSize, barW, r.bgColor)
	return r.rowBg.Width(width).Render(bar + r.rowBg.Render(" ") + r.bg(styleSavings).Render(byteSize(g.PotentialSavings)))
}

func (m *Model) renderTableRow(row TableRow, cols columnWidths, selected, alt bool, maxSize int64, rowWidth int, now time.Time) string {
	r := m.newRowRenderer(row.Path(), selected, alt)

	leading := r.rowBg.Render(" ")
	if r.prefix != "" {
		leading = r.prefix
	}

	var line string
	switch {
	case row.Root != nil:
		root := row.Root
		line = leading +
			r.nameCell(iconRoot, root.DisplayName(), lipgloss.NewStyle().Foreground(sizeColor(root.Size)), cols.name, selected) +
			r.textCell(truncateLeft(root.Path, cols.path-1), styleDim, cols.path) +
			r.textCell(fmt.Sprintf("%d", root.PackageCount), styleVersion, cols.count) +
			r.textCell(humanize.RelTime(root.ModTime, now, "ago", "from now"), styleDim, cols.when) +
			r.sizeCell(root.Size, maxSize, cols.size)
	case row.Dup != nil:
		g := row.Dup
		line = leading +
			r.nameCell(iconDup, g.Name, styleAmber, cols.name, selected) +
			r.textCell(truncateWithEllipsis(strings.Join(g.Versions, ", "), cols.path-1), styleVersion, cols.path) +
			r.textCell(fmt.Sprintf("%d", g.Count), styleAmber, cols.count) +
			r.textCell(byteSize(g.TotalSize), styleDim, cols.when) +
			r.savingsCell(g, cols.size)
	default:
		return ""
	}

	return r.rowBg.Width(rowWidth).Render(line)
}

// --- Detail panel ---

func renderRootDetail(root *model.InstallRoot, innerW int) []string {
	var lines []string

	lines = append(lines, styleName.Render(" "+root.DisplayName()))
	lines = append(lines, styleDim.Render(" "+truncateLeft(root.Path, innerW-1)))
	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(sizeColor(root.Size)).Render(" "+iconBolt+" "+byteSize(root.Size)))
	lines = append(lines, styleDim.Render(fmt.Sprintf(" packages: %d", root.PackageCount)))
	lines = append(lines, styleDim.Render(" modified: "+root.ModTime.Format("2006-01-02 15:04")))
	lines = append(lines, "")

	top := topPackages(root, 8)
	if len(top) == 0 {
		return lines
	}
	lines = append(lines, styleTableHdr.Render(" LARGEST PACKAGES"))
	maxSize := top[0].Size
	for _, p := range top {
		name := truncateWithEllipsis(p.Name, innerW-24)
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			renderHBar(p.Size, maxSize, 6, sizeColor(p.Size)),
			styleDim.Render(padLeft(byteSize(p.Size), 7)),
			styleName.Render(name)+styleVersion.Render("@"+p.Version)))
	}
	if extra := root.PackageCount - len(top); extra > 0 {
		lines = append(lines, styleDim.Render(fmt.Sprintf("  ...and %d more", extra)))
	}
	return lines
}

func renderDupDetail(g *model.DuplicateGroup, innerW int) []string {
	var lines []string

	lines = append(lines, styleName.Render(" "+iconDup+" "+g.Name))
	lines = append(lines, styleVersion.Render(" "+strings.Join(g.Versions, ", ")))
	lines = append(lines, "")

	barW := innerW - 4
	if barW < 6 {
		barW = 6
	}
	lines = append(lines, styleTableHdr.Render(" SAVINGS"))
	lines = append(lines, " "+renderSavingsBar(g.PotentialSavings, g.TotalSize, barW))
	lines = append(lines,
		styleSavings.Render("  "+byteSize(g.PotentialSavings)+" reclaimable")+"  "+
			styleDim.Render("of "+byteSize(g.TotalSize)))
	lines = append(lines, "")

	lines = append(lines, styleTableHdr.Render(fmt.Sprintf(" INSTALLED IN %d PROJECTS", len(g.Locations))))
	maxLines := 10
	for i, loc := range g.Locations {
		if i >= maxLines {
			lines = append(lines, styleDim.Render(fmt.Sprintf("  ...and %d more", len(g.Locations)-maxLines)))
			break
		}
		lines = append(lines, styleDim.Render("  "+iconPackage+" "+truncateLeft(loc, innerW-4)))
	}
	return lines
}

func (m *Model) renderDetailPanel(width, height int) string {
	row, ok := m.selectedRow()
	if !ok {
		return padLines(styleDim.Render(" No selection"), width, height)
	}

	innerW := width - 2
	var lines []string
	switch {
	case row.Root != nil:
		lines = renderRootDetail(row.Root, innerW)
	case row.Dup != nil:
		lines = renderDupDetail(row.Dup, innerW)
	}

	return padLines(strings.Join(lines, "\n"), width, height)
}

// --- Footer, toasts, help ---

func (m *Model) renderFooter() string {
	sep := styleDim.Render(strings.Repeat("─", m.width))

	tab := func(k, label string, active bool) string {
		if active {
			return styleActiveTab.Render(k + " " + label)
		}
		return styleKey.Render(k) + " " + label
	}

	var parts []string
	parts = append(parts, styleKey.Render("/")+" search")
	parts = append(parts, styleKey.Render("r")+" rescan")
	parts = append(parts, styleKey.Render("enter")+" cd")

	sortLabel := "size"
	if m.sortMode == SortPath {
		sortLabel = "path"
	}
	parts = append(parts, tab("s", "sort:"+sortLabel, false))
	parts = append(parts, tab("d", "dupes", m.view == ViewDupes))
	parts = append(parts, tab("i", "detail", m.showDetail))

	parts = append(parts, styleKey.Render("?")+" help")
	parts = append(parts, styleKey.Render("q")+" quit")

	return sep + "\n " + truncateWithEllipsis(strings.Join(parts, "  "), m.width-2)
}

func (m *Model) renderToasts() string {
	var toastStrs []string
	for _, t := range m.toasts {
		var bc lipgloss.Color
		var icon string
		switch t.Level {
		case ToastSuccess:
			bc = colorGold
			icon = iconBolt + " "
		case ToastError:
			bc = colorLargeRed
			icon = iconWarn + " "
		default:
			bc = colorCyan
			icon = ""
		}
		box := styleToastBox.BorderForeground(bc).Render(icon + t.Message)
		toastStrs = append(toastStrs, box)
	}
	return strings.Join(toastStrs, "\n")
}

func (m *Model) renderHelp() string {
	content := m.keys.helpText()

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorCyan).
		Padding(1, 2).
		Width(50).
		Render(styleTitle.Render("HELP") + "\n\n" + content + "\n\n" + styleDim.Render("press any key to close"))

	availH := m.height - 4
	if availH < 10 {
		availH = 10
	}
	return lipgloss.Place(m.width, availH, lipgloss.Center, lipgloss.Center, box)
}

// --- Layout utilities ---

// placeOverlay writes fg on top of bg at the given column (x) and row (y).
// It handles ANSI-styled strings correctly using ansi.Cut.
func placeOverlay(x, y int, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	if x < 0 {
		x = 0
	}
	for i, fgLine := range fgLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLine := bgLines[bgIdx]
		fgW := ansi.StringWidth(fgLine)
		bgW := ansi.StringWidth(bgLine)

		if x >= bgW {
			// Overlay starts beyond the background line; just append
			bgLines[bgIdx] = bgLine + strings.Repeat(" ", x-bgW) + fgLine
			continue
		}

		left := ansi.Cut(bgLine, 0, x)
		var right string
		if x+fgW < bgW {
			right = ansi.Cut(bgLine, x+fgW, bgW)
		}
		bgLines[bgIdx] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}

func padLines(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		w := lipgloss.Width(line)
		if w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}
