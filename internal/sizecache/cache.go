// Package sizecache computes recursive directory sizes and memoizes them for
// a configurable time.
package sizecache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultTimeout is how long a computed directory size stays valid.
const DefaultTimeout = 60 * time.Second

type entry struct {
	size       int64
	computedAt time.Time
}

// Cache memoizes directory sizes keyed by cleaned path. It is safe for
// concurrent use; two callers racing on the same cold path both compute
// and the last write wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	timeout time.Duration

	sem *semaphore.Weighted
	now func() time.Time
}

type Option func(*Cache)

// WithMaxOpenDirs bounds how many directories are read at once.
func WithMaxOpenDirs(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(timeout time.Duration, opts ...Option) *Cache {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Cache{
		entries: make(map[string]entry),
		timeout: timeout,
		sem:     semaphore.NewWeighted(int64(max(4*runtime.NumCPU(), 8))),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Size returns the size in bytes of path. Files report their length,
// symlinks the size of their target (0 when broken), and directories the
// sum of their entries. When path itself is a symlink to a directory, the
// target directory's contents are summed; links below path are not
// followed. Unreadable entries count as 0. Directory results are cached
// unless ctx was cancelled while computing them.
func (c *Cache) Size(ctx context.Context, path string) int64 {
	path = filepath.Clean(path)
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if dir, ok := linkedDir(path); ok {
			return c.dirSize(ctx, dir)
		}
	}
	return c.sizeOf(ctx, path, info)
}

// linkedDir resolves the symlink at path and reports whether it names a
// directory.
func linkedDir(path string) (string, bool) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return target, true
}

func (c *Cache) sizeOf(ctx context.Context, path string, info fs.FileInfo) int64 {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return linkSize(path)
	case info.IsDir():
		return c.dirSize(ctx, path)
	default:
		return info.Size()
	}
}

func (c *Cache) dirSize(ctx context.Context, dir string) int64 {
	if size, ok := c.lookup(dir); ok {
		return size
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0
	}
	entries, err := os.ReadDir(dir)
	c.sem.Release(1)
	if err != nil {
		return 0
	}

	var (
		total atomic.Int64
		wg    sync.WaitGroup
	)
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				total.Add(c.dirSize(ctx, p))
			}()
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total.Add(c.sizeOf(ctx, p, info))
	}
	wg.Wait()

	size := total.Load()
	if ctx.Err() == nil {
		c.store(dir, size)
	}
	return size
}

// linkSize stats the symlink target without descending into it.
func linkSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (c *Cache) lookup(path string) (int64, bool) {
	c.mu.RLock()
	e, ok := c.entries[path]
	timeout := c.timeout
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.computedAt) >= timeout {
		return 0, false
	}
	return e.size, true
}

func (c *Cache) store(path string, size int64) {
	c.mu.Lock()
	c.entries[path] = entry{size: size, computedAt: c.now()}
	c.mu.Unlock()
}

// Clear drops every cached size.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// SetTimeout changes the validity window for cached sizes. A non-positive
// value restores DefaultTimeout.
func (c *Cache) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

func (c *Cache) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// Len returns the number of cached directories, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
