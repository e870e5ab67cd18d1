// internal/scanner/detect.go
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackchuka/depsweep/internal/manifest"
	"github.com/jackchuka/depsweep/internal/model"
)

// resolve builds the descriptor for the install root at path. Only a
// failure to stat path itself is returned; unreadable packages are
// recorded on t and skipped.
func (w *Walker) resolve(ctx context.Context, path string, opts Options, t *traversal) (*model.InstallRoot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	root := &model.InstallRoot{
		Path:        path,
		ModTime:     info.ModTime(),
		Size:        w.cache.Size(ctx, path),
		ProjectPath: filepath.Dir(path),
	}

	if m, err := manifest.Read(filepath.Join(root.ProjectPath, opts.Manifest)); err == nil {
		root.ProjectName = m.Name
	}
	root.ProjectName = root.DisplayName()

	pkgs, err := w.listPackages(ctx, path, opts, t)
	if err != nil {
		t.addError(path, err)
	}
	model.SortPackages(pkgs)
	root.Packages = pkgs
	root.PackageCount = len(pkgs)

	return root, nil
}

// listPackages enumerates the packages directly inside an install root.
// Scope directories are expanded one level; entries starting with '.'
// (.bin, .cache, lockfiles) are not packages.
func (w *Walker) listPackages(ctx context.Context, installDir string, opts Options, t *traversal) ([]model.Package, error) {
	entries, err := os.ReadDir(installDir)
	if err != nil {
		return nil, err
	}

	var pkgs []model.Package
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		dir := filepath.Join(installDir, name)
		if !isDirEntry(dir, e) {
			continue
		}

		if !strings.HasPrefix(name, opts.ScopePrefix) {
			if pkg, ok := w.readPackage(ctx, dir, name, opts); ok {
				pkgs = append(pkgs, pkg)
			}
			continue
		}

		scoped, err := os.ReadDir(dir)
		if err != nil {
			t.addError(dir, err)
			continue
		}
		for _, s := range scoped {
			sub := filepath.Join(dir, s.Name())
			if !isDirEntry(sub, s) {
				continue
			}
			if pkg, ok := w.readPackage(ctx, sub, name+"/"+s.Name(), opts); ok {
				pkgs = append(pkgs, pkg)
			}
		}
	}
	return pkgs, nil
}

// readPackage reports false when dir has no readable manifest.
func (w *Walker) readPackage(ctx context.Context, dir, name string, opts Options) (model.Package, bool) {
	m, err := manifest.Read(filepath.Join(dir, opts.Manifest))
	if err != nil {
		return model.Package{}, false
	}

	version := m.Version
	if version == "" {
		version = model.UnknownVersion
	}
	return model.Package{
		Name:            name,
		Version:         version,
		Size:            w.cache.Size(ctx, dir),
		DependencyCount: m.DependencyCount(),
		Path:            dir,
	}, true
}

// isDirEntry reports whether e is a directory or a symlink to one. Package
// managers such as pnpm link packages into the install dir.
func isDirEntry(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
