// internal/scanner/walker.go
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jackchuka/depsweep/internal/glob"
	"github.com/jackchuka/depsweep/internal/logging"
	"github.com/jackchuka/depsweep/internal/model"
	"github.com/jackchuka/depsweep/internal/sizecache"
)

type Walker struct {
	cache   *sizecache.Cache
	log     logrus.FieldLogger
	workers int
}

func NewWalker(cache *sizecache.Cache, log logrus.FieldLogger) *Walker {
	if cache == nil {
		cache = sizecache.New(0)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Walker{
		cache:   cache,
		log:     log,
		workers: max(runtime.NumCPU(), 2),
	}
}

// Cache returns the size cache shared by every scan of this walker.
func (w *Walker) Cache() *sizecache.Cache {
	return w.cache
}

// ScanAll scans every root concurrently and merges the results in root
// order. Install roots reachable from more than one root are reported once.
func (w *Walker) ScanAll(ctx context.Context, roots []string, opts Options) (*Result, error) {
	start := time.Now()
	results := make([]*Result, len(roots))

	var wg sync.WaitGroup
	for i, root := range roots {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i], _ = w.Scan(ctx, path, opts)
		}(i, root)
	}
	wg.Wait()

	merged := &Result{}
	seen := make(map[string]bool)
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, root := range r.Roots {
			// Deduplicate by path - scan roots may overlap
			if !seen[root.Path] {
				seen[root.Path] = true
				merged.Roots = append(merged.Roots, root)
			}
		}
		merged.Errors = append(merged.Errors, r.Errors...)
	}
	merged.Duration = time.Since(start)
	return merged, ctx.Err()
}

// Scan walks root and returns every install root below it. A missing or
// non-directory root yields an empty result. Unreadable paths are collected
// in Result.Errors; the returned error is only ever ctx.Err().
func (w *Walker) Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	start := time.Now()
	opts = opts.withDefaults()
	res := &Result{}

	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	log := w.log.WithField("root", abs)

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		log.Debug("scan root is not a directory")
		res.Duration = time.Since(start)
		return res, nil
	}

	exclude, err := glob.CompileList(opts.Exclude, glob.Options{})
	if err != nil {
		log.WithError(err).Warn("ignoring invalid exclude patterns")
	}

	t := &traversal{
		ctx:     ctx,
		root:    abs,
		opts:    opts,
		exclude: exclude,
		log:     log,
		visited: make(map[string]struct{}),
	}
	if opts.Parallel {
		t.sem = semaphore.NewWeighted(int64(w.workers))
	}
	if realRoot, err := filepath.EvalSymlinks(abs); err == nil {
		t.visited[realRoot] = struct{}{}
	}

	t.visit(abs, 0)
	t.wg.Wait()

	found := t.found
	if opts.Parallel {
		sort.Strings(found)
	}
	res.Roots = w.resolveAll(ctx, found, opts, t)
	res.Errors = t.errs
	res.Duration = time.Since(start)

	log.WithFields(logrus.Fields{
		"roots":    len(res.Roots),
		"errors":   len(res.Errors),
		"duration": res.Duration,
	}).Debug("scan finished")

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (w *Walker) resolveAll(ctx context.Context, paths []string, opts Options, t *traversal) []model.InstallRoot {
	resolved := make([]*model.InstallRoot, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel {
		g.SetLimit(w.workers)
	} else {
		g.SetLimit(1)
	}
	for i, p := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r, err := w.resolve(gctx, p, opts, t)
			if err != nil {
				t.addError(p, err)
				return nil
			}
			resolved[i] = r
			return nil
		})
	}
	_ = g.Wait()

	roots := make([]model.InstallRoot, 0, len(paths))
	for _, r := range resolved {
		if r != nil {
			roots = append(roots, *r)
		}
	}
	return roots
}

// traversal is the state of one Scan call.
type traversal struct {
	ctx     context.Context
	root    string
	opts    Options
	exclude *glob.List
	log     logrus.FieldLogger

	sem *semaphore.Weighted // nil when sequential
	wg  sync.WaitGroup

	mu      sync.Mutex
	visited map[string]struct{} // real paths
	found   []string
	errs    []ScanError
}

func (t *traversal) visit(dir string, depth int) {
	if t.ctx.Err() != nil {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.addError(dir, err)
		return
	}

	for _, e := range entries {
		if t.ctx.Err() != nil {
			return
		}

		child := filepath.Join(dir, e.Name())
		if !t.isDir(child, e) {
			continue
		}

		rel, err := filepath.Rel(t.root, child)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if !t.opts.IncludeHidden && hasHiddenSegment(rel) {
			continue
		}
		if t.exclude.MatchDir(rel) {
			continue
		}

		realPath, err := filepath.EvalSymlinks(child)
		if err != nil {
			t.addError(child, err)
			continue
		}
		if !t.markVisited(realPath) {
			continue
		}

		if e.Name() == t.opts.InstallDir {
			t.mu.Lock()
			t.found = append(t.found, child)
			t.mu.Unlock()
			continue
		}

		if depth+1 <= t.opts.MaxDepth {
			t.descend(child, depth+1)
		}
	}
}

// descend walks dir on its own goroutine when a worker slot is free and
// inline otherwise, so a full pool never blocks the walk.
func (t *traversal) descend(dir string, depth int) {
	if t.sem == nil || !t.sem.TryAcquire(1) {
		t.visit(dir, depth)
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.sem.Release(1)
		t.visit(dir, depth)
	}()
}

func (t *traversal) isDir(path string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	if !t.opts.FollowSymlinks {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (t *traversal) markVisited(realPath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.visited[realPath]; ok {
		return false
	}
	t.visited[realPath] = struct{}{}
	return true
}

func (t *traversal) addError(path string, err error) {
	t.log.WithFields(logrus.Fields{"path": path}).WithError(err).Debug("skipping unreadable path")
	t.mu.Lock()
	t.errs = append(t.errs, ScanError{Path: path, Err: err})
	t.mu.Unlock()
}

func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

// FindAllProjects returns every directory at most maxDepth levels below
// root (root included) that has a manifest, in walk order. Install dirs and
// hidden directories are not entered.
func (w *Walker) FindAllProjects(ctx context.Context, root string, maxDepth int) ([]string, error) {
	opts := Options{MaxDepth: maxDepth}.withDefaults()
	root = filepath.Clean(root)

	var projects []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.IsDir() {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		depth := 0
		if relPath != "." {
			for _, c := range relPath {
				if c == filepath.Separator {
					depth++
				}
			}
			depth++ // Add 1 for the final component
		}

		if depth > opts.MaxDepth {
			return fs.SkipDir
		}

		if path != root && (d.Name() == opts.InstallDir || strings.HasPrefix(d.Name(), ".")) {
			return fs.SkipDir
		}

		if fileExists(filepath.Join(path, opts.Manifest)) {
			projects = append(projects, path)
		}
		return nil
	})

	return projects, err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
