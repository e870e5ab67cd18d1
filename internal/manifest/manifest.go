// Package manifest reads the subset of package.json that depsweep needs.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultName is the manifest file looked up in projects and packages.
const DefaultName = "package.json"

type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Read parses the manifest at path. Unknown fields are ignored.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// DependencyCount is the number of runtime plus development dependencies.
func (m *Manifest) DependencyCount() int {
	return len(m.Dependencies) + len(m.DevDependencies)
}
