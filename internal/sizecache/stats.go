package sizecache

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Stats summarizes the files below a directory.
type Stats struct {
	TotalSize       int64    `json:"totalSize"`
	FileCount       int      `json:"fileCount"`
	DirectoryCount  int      `json:"directoryCount"` // excludes the root
	LargestFile     FileSize `json:"largestFile"`
	AverageFileSize int64    `json:"averageFileSize"`
}

type FileSize struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// DirectoryStats walks root and counts its files and directories. It does
// not read or populate the size cache. Symlinks are not followed; they
// count as files sized like their target.
func (c *Cache) DirectoryStats(ctx context.Context, root string) (Stats, error) {
	root = filepath.Clean(root)
	info, err := os.Lstat(root)
	if err != nil {
		return Stats{}, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		size := c.sizeOf(ctx, root, info)
		return Stats{
			TotalSize:       size,
			FileCount:       1,
			LargestFile:     FileSize{Path: root, Size: size},
			AverageFileSize: size,
		}, nil
	}

	var (
		mu sync.Mutex
		st Stats
	)
	walk := func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || p == root {
			return nil
		}

		if d.IsDir() {
			mu.Lock()
			st.DirectoryCount++
			mu.Unlock()
			return nil
		}

		var size int64
		if d.Type()&fs.ModeSymlink != 0 {
			size = linkSize(p)
		} else {
			fi, err := d.Info()
			if err != nil {
				return nil
			}
			size = fi.Size()
		}

		mu.Lock()
		st.FileCount++
		st.TotalSize += size
		if size > st.LargestFile.Size || st.LargestFile.Path == "" {
			st.LargestFile = FileSize{Path: p, Size: size}
		}
		mu.Unlock()
		return nil
	}

	if err := fastwalk.Walk(&fastwalk.Config{Follow: false}, root, walk); err != nil {
		return Stats{}, fmt.Errorf("walk %s: %w", root, err)
	}

	if st.FileCount > 0 {
		st.AverageFileSize = st.TotalSize / int64(st.FileCount)
	}
	return st, nil
}
