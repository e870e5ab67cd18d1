// Package report renders scan results as tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/jackchuka/depsweep/internal/model"
	"github.com/jackchuka/depsweep/internal/scanner"
	"github.com/jackchuka/depsweep/internal/sizecache"
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("73"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
)

func byteSize(n int64) string {
	return humanize.Bytes(uint64(max(n, 0)))
}

func heading(w io.Writer, title, detail string) {
	fmt.Fprintf(w, "%s %s\n", styleHeading.Render(title), styleDim.Render(detail))
}

// Roots prints one row per install root and a size total.
func Roots(w io.Writer, res *scanner.Result, now time.Time) error {
	heading(w, "Install roots", fmt.Sprintf("(%d found in %s)", len(res.Roots), res.Duration.Round(time.Millisecond)))

	table := tablewriter.NewWriter(w)
	table.Header("Project", "Path", "Packages", "Size", "Modified")
	for _, r := range res.Roots {
		if err := table.Append(r.DisplayName(), r.Path, fmt.Sprintf("%d", r.PackageCount), r.SizeHuman(), humanize.RelTime(r.ModTime, now, "ago", "from now")); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	table.Footer("TOTAL", "", "", byteSize(model.TotalSize(res.Roots)), "")
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	if n := len(res.Errors); n > 0 {
		fmt.Fprintln(w, styleWarn.Render(fmt.Sprintf("%d path(s) could not be read; rerun with --verbose for details", n)))
	}
	return nil
}

// Duplicates prints the duplicate report, largest savings first.
func Duplicates(w io.Writer, rep model.DuplicateReport) error {
	heading(w, "Duplicate packages", fmt.Sprintf("(%d, up to %s reclaimable)", rep.TotalDuplicates, rep.SavingsHuman()))
	if rep.TotalDuplicates == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Package", "Versions", "Projects", "Copies", "Total", "Savings")
	for _, g := range rep.Packages {
		if err := table.Append(
			g.Name,
			strings.Join(g.Versions, ", "),
			fmt.Sprintf("%d", len(g.Locations)),
			fmt.Sprintf("%d", g.Count),
			byteSize(g.TotalSize),
			byteSize(g.PotentialSavings),
		); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	table.Footer("TOTAL", "", "", "", "", rep.SavingsHuman())
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// Projects prints one project directory per line.
func Projects(w io.Writer, paths []string) error {
	heading(w, "Projects", fmt.Sprintf("(%d)", len(paths)))
	for _, p := range paths {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints a directory statistics summary.
func Stats(w io.Writer, path string, st sizecache.Stats) error {
	heading(w, "Directory stats", path)

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Total size", byteSize(st.TotalSize)},
		{"Files", humanize.Comma(int64(st.FileCount))},
		{"Directories", humanize.Comma(int64(st.DirectoryCount))},
		{"Average file", byteSize(st.AverageFileSize)},
		{"Largest file", fmt.Sprintf("%s (%s)", st.LargestFile.Path, byteSize(st.LargestFile.Size))},
	}
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
