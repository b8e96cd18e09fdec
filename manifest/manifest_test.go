package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "fern.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "demo"
version = "0.1.0"

[run]
entry = "scripts/start.fern"
trace = true
disassemble = true
verbosity = 2
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Project.Name != "demo" || m.Project.Version != "0.1.0" {
		t.Errorf("project = %+v", m.Project)
	}
	if m.Run.Entry != "scripts/start.fern" {
		t.Errorf("entry = %q", m.Run.Entry)
	}
	if !m.Run.Trace || !m.Run.Disassemble || m.Run.Verbosity != 2 {
		t.Errorf("run = %+v", m.Run)
	}
	if want, _ := filepath.Abs(dir); m.Dir != want {
		t.Errorf("dir = %q, want %q", m.Dir, want)
	}
	if got := m.EntryPath(); got != filepath.Join(m.Dir, "scripts/start.fern") {
		t.Errorf("EntryPath() = %q", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "bare"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Run.Entry != "main.fern" {
		t.Errorf("default entry = %q", m.Run.Entry)
	}
	if m.Run.Trace || m.Run.Disassemble || m.Run.Verbosity != 0 {
		t.Errorf("run defaults = %+v", m.Run)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load of empty dir should fail")
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[project\nname =")
	if _, err := Load(dir); err == nil {
		t.Fatal("malformed toml should fail")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[project]
name = "nested"
`)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m == nil {
		t.Fatal("manifest not found from nested dir")
	}
	if m.Project.Name != "nested" {
		t.Errorf("project name = %q", m.Project.Name)
	}
	if want, _ := filepath.Abs(root); m.Dir != want {
		t.Errorf("dir = %q, want %q", m.Dir, want)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m != nil {
		t.Errorf("unexpected manifest: %+v", m)
	}
}
