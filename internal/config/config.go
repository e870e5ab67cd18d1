// internal/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jackchuka/depsweep/internal/glob"
	"github.com/jackchuka/depsweep/internal/manifest"
	"github.com/jackchuka/depsweep/internal/scanner"
	"github.com/jackchuka/depsweep/internal/sizecache"
)

type Config struct {
	// Scanning
	ScanPaths       []string `yaml:"scan_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	MaxDepth        int      `yaml:"max_depth"`
	IncludeHidden   bool     `yaml:"include_hidden"`
	Parallel        bool     `yaml:"parallel"`
	FollowSymlinks  bool     `yaml:"follow_symlinks"`

	// Project layout
	InstallDir string `yaml:"install_dir"`
	Manifest   string `yaml:"manifest"`

	// Runtime
	CacheTimeout time.Duration `yaml:"cache_timeout"`
	LogLevel     string        `yaml:"log_level"`
}

func NewConfig() *Config {
	return &Config{
		ScanPaths: []string{},
		ExcludePatterns: []string{
			"**/vendor/**",
			"**/__pycache__/**",
			"**/venv/**",
			"**/target/**",
		},
		MaxDepth:     scanner.DefaultMaxDepth,
		Parallel:     true,
		InstallDir:   scanner.DefaultInstallDir,
		Manifest:     manifest.DefaultName,
		CacheTimeout: sizecache.DefaultTimeout,
		LogLevel:     "warn",
	}
}

// ScanOptions converts the scanning section to scanner options.
func (c *Config) ScanOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.MaxDepth = c.MaxDepth
	opts.Exclude = c.ExcludePatterns
	opts.IncludeHidden = c.IncludeHidden
	opts.Parallel = c.Parallel
	opts.FollowSymlinks = c.FollowSymlinks
	if c.InstallDir != "" {
		opts.InstallDir = c.InstallDir
	}
	if c.Manifest != "" {
		opts.Manifest = c.Manifest
	}
	return opts
}

// Validate drops exclude patterns that do not compile and resets
// out-of-range values to their defaults, logging a warning for each.
func (c *Config) Validate(log logrus.FieldLogger) {
	kept := c.ExcludePatterns[:0]
	for _, p := range c.ExcludePatterns {
		if _, err := glob.Compile(strings.TrimPrefix(p, "!"), glob.Options{}); err != nil {
			log.WithField("pattern", p).WithError(err).Warn("dropping invalid exclude pattern")
			continue
		}
		kept = append(kept, p)
	}
	c.ExcludePatterns = kept

	if c.MaxDepth <= 0 {
		log.WithField("max_depth", c.MaxDepth).Warn("max_depth must be positive, using default")
		c.MaxDepth = scanner.DefaultMaxDepth
	}
	if c.CacheTimeout <= 0 {
		c.CacheTimeout = sizecache.DefaultTimeout
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		log.WithField("log_level", c.LogLevel).Warn("unknown log level, using warn")
		c.LogLevel = "warn"
	}
}
