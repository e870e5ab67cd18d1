// Package duplicates reports packages installed in more than one project.
package duplicates

import (
	"slices"
	"sort"

	"github.com/jackchuka/depsweep/internal/model"
)

type observations struct {
	versions  map[string]struct{}
	locations []string
	seen      map[string]struct{}
	count     int
	total     int64
}

// Analyze groups the packages of roots by name. A name is a duplicate when
// it appears under more than one distinct project path. Savings assume one
// average-sized copy is kept: total - total/count.
func Analyze(roots []model.InstallRoot) model.DuplicateReport {
	byName := make(map[string]*observations)
	for _, r := range roots {
		for _, pkg := range r.Packages {
			o, ok := byName[pkg.Name]
			if !ok {
				o = &observations{
					versions: make(map[string]struct{}),
					seen:     make(map[string]struct{}),
				}
				byName[pkg.Name] = o
			}
			o.count++
			o.total += pkg.Size
			o.versions[pkg.Version] = struct{}{}
			if _, dup := o.seen[r.ProjectPath]; !dup {
				o.seen[r.ProjectPath] = struct{}{}
				o.locations = append(o.locations, r.ProjectPath)
			}
		}
	}

	report := model.DuplicateReport{Packages: []model.DuplicateGroup{}}
	for name, o := range byName {
		if len(o.locations) < 2 {
			continue
		}
		versions := make([]string, 0, len(o.versions))
		for v := range o.versions {
			versions = append(versions, v)
		}
		slices.Sort(versions)

		g := model.DuplicateGroup{
			Name:             name,
			Versions:         versions,
			Locations:        o.locations,
			Count:            o.count,
			TotalSize:        o.total,
			PotentialSavings: o.total - o.total/int64(o.count),
		}
		report.Packages = append(report.Packages, g)
		report.PotentialSavings += g.PotentialSavings
	}
	report.TotalDuplicates = len(report.Packages)

	sort.Slice(report.Packages, func(i, j int) bool {
		a, b := report.Packages[i], report.Packages[j]
		if a.PotentialSavings != b.PotentialSavings {
			return a.PotentialSavings > b.PotentialSavings
		}
		return a.Name < b.Name
	})
	return report
}
