package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantName    string
		wantVersion string
		wantDeps    int
		wantErr     bool
	}{
		{
			name:        "full manifest",
			content:     `{"name":"lodash","version":"4.17.21","dependencies":{"a":"1"},"devDependencies":{"b":"2","c":"3"}}`,
			wantName:    "lodash",
			wantVersion: "4.17.21",
			wantDeps:    3,
		},
		{
			name:     "no version or deps",
			content:  `{"name":"bare","scripts":{"test":"x"}}`,
			wantName: "bare",
		},
		{
			name:    "malformed",
			content: `{"name":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultName)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			m, err := Read(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Read() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if m.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", m.Name, tt.wantName)
			}
			if m.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", m.Version, tt.wantVersion)
			}
			if got := m.DependencyCount(); got != tt.wantDeps {
				t.Errorf("DependencyCount() = %d, want %d", got, tt.wantDeps)
			}
		})
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), DefaultName))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read() error = %v, want fs.ErrNotExist", err)
	}
}
