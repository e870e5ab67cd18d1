package model

import "github.com/dustin/go-humanize"

// DuplicateGroup describes one package name installed in more than one
// project.
type DuplicateGroup struct {
	Name             string   `json:"name"`
	Versions         []string `json:"versions"`  // Sorted, distinct
	Locations        []string `json:"locations"` // Project paths, first-seen order
	Count            int      `json:"count"`     // Observations across all roots
	TotalSize        int64    `json:"totalSize"`
	PotentialSavings int64    `json:"potentialSavings"`
}

// Spread reports whether the group spans more than one version.
func (g *DuplicateGroup) Spread() bool {
	return len(g.Versions) > 1
}

type DuplicateReport struct {
	Packages         []DuplicateGroup `json:"packages"` // Savings descending, ties by name
	TotalDuplicates  int              `json:"totalDuplicates"`
	PotentialSavings int64            `json:"potentialSavings"`
}

func (r *DuplicateReport) SavingsHuman() string {
	return humanize.Bytes(uint64(max(r.PotentialSavings, 0)))
}
