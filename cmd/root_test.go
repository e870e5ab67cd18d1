package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackchuka/depsweep/internal/config"
	"github.com/jackchuka/depsweep/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, flagJSON, flagTUI, flagSort = "", false, false, "size"
	initForce, initDefaults = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRoot_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app", "package.json"), `{"name": "app"}`)
	writeFile(t, filepath.Join(dir, "app", "node_modules", "lodash", "package.json"), `{"name": "lodash", "version": "4.17.21"}`)

	out, err := execute(t, dir, "--json", "--config", filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var res struct {
		Roots []model.InstallRoot `json:"roots"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(res.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(res.Roots))
	}
	if got := res.Roots[0]; got.ProjectName != "app" || got.PackageCount != 1 {
		t.Errorf("root = %+v, want app with 1 package", got)
	}
}

func TestDupes_JSON(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"a", "b"} {
		writeFile(t, filepath.Join(dir, p, "node_modules", "react", "package.json"), `{"version": "18.2.0"}`)
		writeFile(t, filepath.Join(dir, p, "node_modules", "react", "index.js"), "module.exports = {}")
	}

	out, err := execute(t, "dupes", dir, "--json", "--config", filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var rep model.DuplicateReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if rep.TotalDuplicates != 1 || rep.Packages[0].Name != "react" {
		t.Errorf("report = %+v, want one react group", rep)
	}
}

func TestInit_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := execute(t, "init", "--defaults", "--config", path); err != nil {
		t.Fatalf("init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	_, err := execute(t, "init", "--defaults", "--config", path)
	if !errors.Is(err, config.ErrConfigExists) {
		t.Errorf("second init error = %v, want ErrConfigExists", err)
	}

	if _, err := execute(t, "init", "--defaults", "--force", "--config", path); err != nil {
		t.Fatalf("init --force error = %v", err)
	}
	backups, _ := filepath.Glob(path + ".bak.*")
	if len(backups) != 1 {
		t.Errorf("backups = %v, want one", backups)
	}
}

func TestScanPaths(t *testing.T) {
	cfg = config.NewConfig()

	if got := scanPaths(nil); len(got) != 1 || got[0] != "." {
		t.Errorf("scanPaths(nil) = %v, want [.]", got)
	}

	cfg.ScanPaths = []string{"/srv/code"}
	if got := scanPaths(nil); len(got) != 1 || got[0] != "/srv/code" {
		t.Errorf("scanPaths(nil) = %v, want config paths", got)
	}

	if got := scanPaths([]string{"/tmp/x"}); len(got) != 1 || got[0] != "/tmp/x" {
		t.Errorf("scanPaths(args) = %v, want args", got)
	}
}
