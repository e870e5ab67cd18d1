package sizecache

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestDirectoryStats(t *testing.T) {
	root := makeTree(t)
	c := New(0)

	st, err := c.DirectoryStats(context.Background(), root)
	if err != nil {
		t.Fatalf("DirectoryStats() error = %v", err)
	}

	if st.TotalSize != 15 {
		t.Errorf("TotalSize = %d, want 15", st.TotalSize)
	}
	if st.FileCount != 3 {
		t.Errorf("FileCount = %d, want 3", st.FileCount)
	}
	if st.DirectoryCount != 2 {
		t.Errorf("DirectoryCount = %d, want 2", st.DirectoryCount)
	}
	if want := filepath.Join(root, "sub", "b"); st.LargestFile.Path != want || st.LargestFile.Size != 7 {
		t.Errorf("LargestFile = %+v, want {%s 7}", st.LargestFile, want)
	}
	if st.AverageFileSize != 5 {
		t.Errorf("AverageFileSize = %d, want 5", st.AverageFileSize)
	}
	if c.Len() != 0 {
		t.Errorf("DirectoryStats should not populate the cache, Len() = %d", c.Len())
	}
}

func TestDirectoryStats_File(t *testing.T) {
	root := makeTree(t)
	path := filepath.Join(root, "sub", "b")

	st, err := New(0).DirectoryStats(context.Background(), path)
	if err != nil {
		t.Fatalf("DirectoryStats() error = %v", err)
	}
	if st.FileCount != 1 || st.TotalSize != 7 || st.DirectoryCount != 0 {
		t.Errorf("DirectoryStats(file) = %+v, want one 7-byte file", st)
	}
}

func TestDirectoryStats_Empty(t *testing.T) {
	st, err := New(0).DirectoryStats(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("DirectoryStats() error = %v", err)
	}
	if st != (Stats{}) {
		t.Errorf("DirectoryStats(empty) = %+v, want zero stats", st)
	}
}

func TestDirectoryStats_Missing(t *testing.T) {
	_, err := New(0).DirectoryStats(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("DirectoryStats(missing) error = %v, want fs.ErrNotExist", err)
	}
}
