// internal/scanner/walker_test.go
package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"testing"
)

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(p, 0755); err != nil {
		t.Fatal(err)
	}
	return p
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	mkdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func rootPaths(res *Result) []string {
	paths := make([]string, 0, len(res.Roots))
	for _, r := range res.Roots {
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)
	return paths
}

func sequential() Options {
	opts := DefaultOptions()
	opts.Parallel = false
	return opts
}

// twoProjects lays out projA (with a manifest) and projB (without one),
// both depending on lodash.
func twoProjects(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	writeManifest(t, filepath.Join(tmpDir, "projA"), `{"name":"proj-a"}`)
	writeManifest(t, filepath.Join(tmpDir, "projA", "node_modules", "lodash"),
		`{"name":"lodash","version":"4.17.21","dependencies":{"x":"1"},"devDependencies":{"y":"1"}}`)
	writeManifest(t, filepath.Join(tmpDir, "projA", "node_modules", "@types", "node"), `{"name":"@types/node"}`)
	mkdir(t, tmpDir, "projA", "node_modules", ".bin")
	mkdir(t, tmpDir, "projA", "node_modules", "no-manifest")

	writeManifest(t, filepath.Join(tmpDir, "projB", "node_modules", "lodash"), `{"name":"lodash","version":"4.17.20"}`)
	return tmpDir
}

func TestWalker_FindsInstallRoots(t *testing.T) {
	tmpDir := twoProjects(t)

	w := NewWalker(nil, nil)
	res, err := w.Scan(context.Background(), tmpDir, sequential())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(res.Roots) != 2 {
		t.Fatalf("Found %d install roots, want 2", len(res.Roots))
	}

	a, b := res.Roots[0], res.Roots[1]
	if a.Path != filepath.Join(tmpDir, "projA", "node_modules") {
		t.Errorf("first root = %q, want projA/node_modules", a.Path)
	}
	if a.ProjectName != "proj-a" {
		t.Errorf("ProjectName = %q, want %q", a.ProjectName, "proj-a")
	}
	if a.ProjectPath != filepath.Join(tmpDir, "projA") {
		t.Errorf("ProjectPath = %q, want projA", a.ProjectPath)
	}
	if b.ProjectName != "projB" {
		t.Errorf("ProjectName without manifest = %q, want %q", b.ProjectName, "projB")
	}

	if a.PackageCount != 2 || len(a.Packages) != 2 {
		t.Fatalf("PackageCount = %d, want 2 (packages %+v)", a.PackageCount, a.Packages)
	}
	scoped, lodash := a.Packages[0], a.Packages[1]
	if scoped.Name != "@types/node" {
		t.Errorf("scoped package name = %q, want %q", scoped.Name, "@types/node")
	}
	if scoped.Version != "unknown" {
		t.Errorf("scoped package version = %q, want %q", scoped.Version, "unknown")
	}
	if lodash.Version != "4.17.21" || lodash.DependencyCount != 2 {
		t.Errorf("lodash = %+v, want version 4.17.21 with 2 dependencies", lodash)
	}
	if a.Size <= 0 || lodash.Size <= 0 {
		t.Errorf("sizes should be positive, root %d, lodash %d", a.Size, lodash.Size)
	}
	if a.ModTime.IsZero() {
		t.Error("ModTime should be set")
	}
}

func TestWalker_RespectsMaxDepth(t *testing.T) {
	tmpDir := t.TempDir()

	// Project at depth 4
	mkdir(t, tmpDir, "a", "b", "c", "proj", "node_modules")

	tests := []struct {
		maxDepth int
		want     int
	}{
		{3, 0},
		{4, 1},
		{0, 1}, // default depth
	}

	w := NewWalker(nil, nil)
	for _, tt := range tests {
		opts := sequential()
		opts.MaxDepth = tt.maxDepth
		res, err := w.Scan(context.Background(), tmpDir, opts)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(res.Roots) != tt.want {
			t.Errorf("MaxDepth=%d: found %d roots, want %d", tt.maxDepth, len(res.Roots), tt.want)
		}
	}
}

func TestWalker_DepthOneFindsProjectInstallDir(t *testing.T) {
	tmpDir := twoProjects(t)
	mkdir(t, tmpDir, "projA", "packages", "inner", "node_modules")

	opts := sequential()
	opts.MaxDepth = 1
	res, err := NewWalker(nil, nil).Scan(context.Background(), tmpDir, opts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{
		filepath.Join(tmpDir, "projA", "node_modules"),
		filepath.Join(tmpDir, "projB", "node_modules"),
	}
	if got := rootPaths(res); !slices.Equal(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
}

func TestWalker_DoesNotDescendIntoInstallDir(t *testing.T) {
	tmpDir := t.TempDir()
	mkdir(t, tmpDir, "proj", "node_modules", "pkg", "node_modules", "nested")

	res, err := NewWalker(nil, nil).Scan(context.Background(), tmpDir, sequential())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Roots) != 1 {
		t.Errorf("Found %d roots, want 1 (nested install dirs are not roots)", len(res.Roots))
	}
}

func TestWalker_SkipsExcludedDirs(t *testing.T) {
	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{"no exclusions", nil, []string{"projA", "projB"}},
		{"exact directory", []string{"projB"}, []string{"projA"}},
		{"globstar", []string{"**/projA/**"}, []string{"projB"}},
		{"negated exclusion", []string{"proj*", "!projA"}, []string{"projA"}},
		{"install dir itself", []string{"projA/node_modules"}, []string{"projB"}},
		{"invalid pattern ignored", []string{"[z-a]"}, []string{"projA", "projB"}},
	}

	tmpDir := twoProjects(t)
	w := NewWalker(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := sequential()
			opts.Exclude = tt.exclude
			res, err := w.Scan(context.Background(), tmpDir, opts)
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			var want []string
			for _, p := range tt.want {
				want = append(want, filepath.Join(tmpDir, p, "node_modules"))
			}
			if got := rootPaths(res); !slices.Equal(got, want) {
				t.Errorf("roots = %v, want %v", got, want)
			}
		})
	}
}

func TestWalker_HiddenDirs(t *testing.T) {
	tmpDir := t.TempDir()
	mkdir(t, tmpDir, ".cache", "proj", "node_modules")
	mkdir(t, tmpDir, "visible", "node_modules")

	w := NewWalker(nil, nil)

	opts := sequential()
	res, err := w.Scan(context.Background(), tmpDir, opts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Roots) != 1 {
		t.Errorf("Found %d roots, want 1 (hidden skipped)", len(res.Roots))
	}

	opts.IncludeHidden = true
	res, err = w.Scan(context.Background(), tmpDir, opts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Roots) != 2 {
		t.Errorf("Found %d roots, want 2 with IncludeHidden", len(res.Roots))
	}
}

func TestWalker_MissingRoot(t *testing.T) {
	res, err := NewWalker(nil, nil).Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), DefaultOptions())
	if err != nil {
		t.Fatalf("Scan() error = %v, want nil", err)
	}
	if len(res.Roots) != 0 || len(res.Errors) != 0 {
		t.Errorf("Scan(missing) = %+v, want empty result", res)
	}
}

func TestWalker_ParallelMatchesSequential(t *testing.T) {
	tmpDir := twoProjects(t)
	for i := range 6 {
		mkdir(t, tmpDir, "group", string(rune('a'+i)), "app", "node_modules", "dep")
	}

	w := NewWalker(nil, nil)
	seq, err := w.Scan(context.Background(), tmpDir, sequential())
	if err != nil {
		t.Fatalf("sequential Scan() error = %v", err)
	}
	par, err := w.Scan(context.Background(), tmpDir, DefaultOptions())
	if err != nil {
		t.Fatalf("parallel Scan() error = %v", err)
	}

	if got, want := rootPaths(par), rootPaths(seq); !slices.Equal(got, want) {
		t.Errorf("parallel roots = %v, want %v", got, want)
	}
	if len(seq.Roots) != 8 {
		t.Errorf("Found %d roots, want 8", len(seq.Roots))
	}
}

func TestWalker_SymlinkCycle(t *testing.T) {
	tmpDir := t.TempDir()
	a := mkdir(t, tmpDir, "a")
	mkdir(t, a, "node_modules", "dep")
	if err := os.Symlink(a, filepath.Join(a, "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(a, filepath.Join(tmpDir, "z-alias")); err != nil {
		t.Fatal(err)
	}

	for _, parallel := range []bool{false, true} {
		opts := DefaultOptions()
		opts.FollowSymlinks = true
		opts.Parallel = parallel
		res, err := NewWalker(nil, nil).Scan(context.Background(), tmpDir, opts)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(res.Roots) != 1 {
			t.Errorf("parallel=%v: found %d roots, want 1", parallel, len(res.Roots))
		}
	}
}

func TestWalker_SymlinksIgnoredByDefault(t *testing.T) {
	tmpDir := t.TempDir()
	target := mkdir(t, t.TempDir(), "elsewhere")
	mkdir(t, target, "node_modules")
	if err := os.Symlink(target, filepath.Join(tmpDir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	w := NewWalker(nil, nil)
	res, err := w.Scan(context.Background(), tmpDir, sequential())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Roots) != 0 {
		t.Errorf("Found %d roots, want 0 without FollowSymlinks", len(res.Roots))
	}

	opts := sequential()
	opts.FollowSymlinks = true
	res, err = w.Scan(context.Background(), tmpDir, opts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Roots) != 1 {
		t.Errorf("Found %d roots, want 1 with FollowSymlinks", len(res.Roots))
	}
}

func TestWalker_SizesLinkedDirsByContents(t *testing.T) {
	const payload = 100000

	tests := []struct {
		name     string
		rootFull bool // the payload lies under the install root itself
		layout   func(t *testing.T, tmpDir, store string) error
	}{
		{
			name:     "linked install dir",
			rootFull: true,
			layout: func(t *testing.T, tmpDir, store string) error {
				mkdir(t, tmpDir, "projA")
				return os.Symlink(store, filepath.Join(tmpDir, "projA", "node_modules"))
			},
		},
		{
			name: "linked package",
			layout: func(t *testing.T, tmpDir, store string) error {
				nm := mkdir(t, tmpDir, "projA", "node_modules")
				return os.Symlink(filepath.Join(store, "pkg"), filepath.Join(nm, "pkg"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir, store := t.TempDir(), t.TempDir()
			writeManifest(t, filepath.Join(store, "pkg"), `{"name":"pkg","version":"1.0.0"}`)
			if err := os.WriteFile(filepath.Join(store, "pkg", "blob"), make([]byte, payload), 0644); err != nil {
				t.Fatal(err)
			}
			if err := tt.layout(t, tmpDir, store); err != nil {
				t.Skipf("symlinks unsupported: %v", err)
			}

			opts := sequential()
			opts.FollowSymlinks = true
			res, err := NewWalker(nil, nil).Scan(context.Background(), tmpDir, opts)
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if len(res.Roots) != 1 {
				t.Fatalf("Found %d roots, want 1", len(res.Roots))
			}
			root := res.Roots[0]
			if len(root.Packages) != 1 {
				t.Fatalf("Packages = %v, want one", root.Packages)
			}
			if got := root.Packages[0].Size; got < payload {
				t.Errorf("package Size = %d, want >= %d", got, payload)
			}
			if tt.rootFull && root.Size < payload {
				t.Errorf("root Size = %d, want >= %d", root.Size, payload)
			}
		})
	}
}

func TestWalker_RecordsUnreadableDirs(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	tmpDir := twoProjects(t)
	locked := mkdir(t, tmpDir, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	res, err := NewWalker(nil, nil).Scan(context.Background(), tmpDir, sequential())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Roots) != 2 {
		t.Errorf("Found %d roots, want 2", len(res.Roots))
	}
	if len(res.Errors) != 1 || res.Errors[0].Path != locked {
		t.Errorf("Errors = %v, want one error for %s", res.Errors, locked)
	}
}

func TestWalker_Cancelled(t *testing.T) {
	tmpDir := twoProjects(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWalker(nil, nil).Scan(ctx, tmpDir, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}

func TestWalker_ScanAllDeduplicates(t *testing.T) {
	tmpDir := twoProjects(t)

	w := NewWalker(nil, nil)
	res, err := w.ScanAll(context.Background(), []string{tmpDir, filepath.Join(tmpDir, "projA")}, sequential())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(res.Roots) != 2 {
		t.Errorf("Found %d roots, want 2 (overlapping roots deduplicated)", len(res.Roots))
	}
}

func TestWalker_FindAllProjects(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, `{"name":"root"}`)
	writeManifest(t, filepath.Join(tmpDir, "app"), `{"name":"app"}`)
	writeManifest(t, filepath.Join(tmpDir, "app", "node_modules", "dep"), `{"name":"dep"}`)
	writeManifest(t, filepath.Join(tmpDir, ".hidden"), `{"name":"hidden"}`)
	writeManifest(t, filepath.Join(tmpDir, "deep", "a", "b"), `{"name":"deep"}`)
	mkdir(t, tmpDir, "empty")

	w := NewWalker(nil, nil)
	got, err := w.FindAllProjects(context.Background(), tmpDir, 2)
	if err != nil {
		t.Fatalf("FindAllProjects() error = %v", err)
	}
	want := []string{tmpDir, filepath.Join(tmpDir, "app")}
	if !slices.Equal(got, want) {
		t.Errorf("FindAllProjects() = %v, want %v", got, want)
	}

	got, err = w.FindAllProjects(context.Background(), tmpDir, 3)
	if err != nil {
		t.Fatalf("FindAllProjects() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("FindAllProjects(depth 3) found %d projects, want 3", len(got))
	}
}

func TestWalker_FindAllProjectsMissingRoot(t *testing.T) {
	got, err := NewWalker(nil, nil).FindAllProjects(context.Background(), filepath.Join(t.TempDir(), "missing"), 5)
	if err != nil {
		t.Fatalf("FindAllProjects() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FindAllProjects(missing) = %v, want empty", got)
	}
}
