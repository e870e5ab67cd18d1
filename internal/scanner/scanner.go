// internal/scanner/scanner.go
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackchuka/depsweep/internal/manifest"
	"github.com/jackchuka/depsweep/internal/model"
)

const (
	DefaultMaxDepth    = 10
	DefaultInstallDir  = "node_modules"
	DefaultScopePrefix = "@"
)

type Scanner interface {
	Scan(ctx context.Context, root string, opts Options) (*Result, error)
	FindAllProjects(ctx context.Context, root string, maxDepth int) ([]string, error)
}

// Options controls a single scan.
type Options struct {
	MaxDepth       int      // Levels below root that may own an install dir; <= 0 means DefaultMaxDepth
	Exclude        []string // Glob patterns matched against slash-separated paths relative to root
	IncludeHidden  bool     // Descend into dot-directories
	Parallel       bool     // Walk sibling subtrees and resolve install dirs concurrently
	FollowSymlinks bool     // Treat symlinks to directories as directories

	InstallDir  string // Directory name that marks an install root
	Manifest    string // Manifest file name inside projects and packages
	ScopePrefix string // Prefix of scope directories expanded one level
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:    DefaultMaxDepth,
		Parallel:    true,
		InstallDir:  DefaultInstallDir,
		Manifest:    manifest.DefaultName,
		ScopePrefix: DefaultScopePrefix,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.InstallDir == "" {
		o.InstallDir = DefaultInstallDir
	}
	if o.Manifest == "" {
		o.Manifest = manifest.DefaultName
	}
	if o.ScopePrefix == "" {
		o.ScopePrefix = DefaultScopePrefix
	}
	return o
}

type Result struct {
	Roots    []model.InstallRoot `json:"roots"`
	Errors   []ScanError         `json:"errors"`
	Duration time.Duration       `json:"duration"`
}

// ScanError records a path the scan could not read. It never aborts a scan.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ScanError) Unwrap() error {
	return e.Err
}

func (e ScanError) MarshalJSON() ([]byte, error) {
	var msg string
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}{e.Path, msg})
}
