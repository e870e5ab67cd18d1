// internal/model/root.go
package model

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// InstallRoot is one dependency-install directory found by a scan.
type InstallRoot struct {
	Path         string    `json:"path"`         // Absolute path to the install directory
	Size         int64     `json:"size"`         // Recursive size in bytes
	PackageCount int       `json:"packageCount"` // len(Packages)
	ModTime      time.Time `json:"modTime"`      // Install directory mtime
	Packages     []Package `json:"packages"`     // Ordered by name
	ProjectName  string    `json:"projectName"`  // Owning project's manifest name, or its base name
	ProjectPath  string    `json:"projectPath"`  // Directory containing the install directory
}

func (r *InstallRoot) DisplayName() string {
	if r.ProjectName != "" {
		return r.ProjectName
	}
	return filepath.Base(r.ProjectPath)
}

func (r *InstallRoot) SizeHuman() string {
	return humanize.Bytes(uint64(max(r.Size, 0)))
}

// MarshalJSON adds the formatted size as "sizeHuman".
func (r InstallRoot) MarshalJSON() ([]byte, error) {
	type plain InstallRoot
	return json.Marshal(struct {
		plain
		SizeHuman string `json:"sizeHuman"`
	}{plain(r), r.SizeHuman()})
}

// Package is an installed package inside an install root. Scoped packages
// are named "@scope/name".
type Package struct {
	Name            string `json:"name"`
	Version         string `json:"version"` // "unknown" when the manifest has none
	Size            int64  `json:"size"`
	DependencyCount int    `json:"dependencyCount"` // dependencies + devDependencies
	Path            string `json:"path"`
}

// UnknownVersion is recorded for packages whose manifest has no version.
const UnknownVersion = "unknown"

// SortPackages orders packages by name, then path.
func SortPackages(pkgs []Package) {
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return pkgs[i].Path < pkgs[j].Path
	})
}

// TotalSize sums the sizes of roots.
func TotalSize(roots []InstallRoot) int64 {
	var total int64
	for _, r := range roots {
		total += r.Size
	}
	return total
}

// SortBySize orders roots by size descending, ties by path.
func SortBySize(roots []InstallRoot) {
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Size != roots[j].Size {
			return roots[i].Size > roots[j].Size
		}
		return roots[i].Path < roots[j].Path
	})
}

// SortByPath orders roots by path ascending.
func SortByPath(roots []InstallRoot) {
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].Path < roots[j].Path
	})
}
