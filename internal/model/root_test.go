// internal/model/root_test.go
package model

import (
	"encoding/json"
	"testing"
)

func TestInstallRoot_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		root     InstallRoot
		expected string
	}{
		{
			name:     "uses ProjectName if set",
			root:     InstallRoot{ProjectName: "web-app", ProjectPath: "/home/user/code/web"},
			expected: "web-app",
		},
		{
			name:     "derives from project path if ProjectName empty",
			root:     InstallRoot{ProjectPath: "/home/user/code/web"},
			expected: "web",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.root.DisplayName()
			if got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestInstallRoot_SizeHuman(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1000, "1.0 kB"},
		{-1, "0 B"},
	}

	for _, tt := range tests {
		r := InstallRoot{Size: tt.size}
		if got := r.SizeHuman(); got != tt.expected {
			t.Errorf("SizeHuman(%d) = %q, want %q", tt.size, got, tt.expected)
		}
	}
}

func TestInstallRoot_MarshalJSON(t *testing.T) {
	roots := []InstallRoot{{Path: "/code/web/node_modules", Size: 1500, PackageCount: 1,
		Packages: []Package{{Name: "lodash", Version: "4.17.21", Size: 10}}}}

	data, err := json.Marshal(roots)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("decoded %d roots, want 1", len(got))
	}
	if got[0]["sizeHuman"] != "1.5 kB" {
		t.Errorf("sizeHuman = %v, want 1.5 kB", got[0]["sizeHuman"])
	}
	if got[0]["size"] != float64(1500) || got[0]["path"] != "/code/web/node_modules" {
		t.Errorf("size, path = %v, %v, want 1500, /code/web/node_modules", got[0]["size"], got[0]["path"])
	}

	var back InstallRoot
	if err := json.Unmarshal(data[1:len(data)-1], &back); err != nil {
		t.Fatalf("Unmarshal(InstallRoot) error = %v", err)
	}
	if back.Size != 1500 || len(back.Packages) != 1 {
		t.Errorf("decoded root = %+v", back)
	}
}

func TestSortBySize(t *testing.T) {
	roots := []InstallRoot{
		{Path: "/b", Size: 10},
		{Path: "/a", Size: 10},
		{Path: "/c", Size: 30},
	}
	SortBySize(roots)

	want := []string{"/c", "/a", "/b"}
	for i, p := range want {
		if roots[i].Path != p {
			t.Errorf("roots[%d].Path = %q, want %q", i, roots[i].Path, p)
		}
	}
	if got := TotalSize(roots); got != 50 {
		t.Errorf("TotalSize() = %d, want 50", got)
	}
}

func TestSortPackages(t *testing.T) {
	pkgs := []Package{
		{Name: "lodash", Path: "/b"},
		{Name: "@types/node", Path: "/x"},
		{Name: "lodash", Path: "/a"},
	}
	SortPackages(pkgs)

	if pkgs[0].Name != "@types/node" {
		t.Errorf("first package = %q, want @types/node", pkgs[0].Name)
	}
	if pkgs[1].Path != "/a" || pkgs[2].Path != "/b" {
		t.Errorf("ties should sort by path, got %q then %q", pkgs[1].Path, pkgs[2].Path)
	}
}

func TestDuplicateGroup_Spread(t *testing.T) {
	tests := []struct {
		name     string
		group    DuplicateGroup
		expected bool
	}{
		{"single version", DuplicateGroup{Versions: []string{"1.0.0"}}, false},
		{"two versions", DuplicateGroup{Versions: []string{"1.0.0", "2.0.0"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.group.Spread(); got != tt.expected {
				t.Errorf("Spread() = %v, want %v", got, tt.expected)
			}
		})
	}
}
