package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/kut/vm"
	"github.com/chazu/kut/vm/snapshot"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[runtime]
initial-capacity = 16
max-capacity = 4096
trace-lifetime = true

[log]
verbosity = 2
file = "kut.log"

[snapshot]
database = "/var/lib/kut/snap.db"
max-depth = 12
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Runtime.InitialCapacity != 16 {
		t.Errorf("initial-capacity = %d, want 16", m.Runtime.InitialCapacity)
	}
	if m.Runtime.MaxCapacity != 4096 {
		t.Errorf("max-capacity = %d, want 4096", m.Runtime.MaxCapacity)
	}
	if !m.Runtime.TraceLifetime {
		t.Error("trace-lifetime = false, want true")
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", m.Log.Verbosity)
	}
	if p := m.LogPath(); p == nil || *p != filepath.Join(m.Dir, "kut.log") {
		t.Errorf("log path = %v", p)
	}
	if m.DatabasePath() != "/var/lib/kut/snap.db" {
		t.Errorf("database = %q", m.DatabasePath())
	}
	if m.Snapshot.MaxDepth != 12 {
		t.Errorf("max-depth = %d, want 12", m.Snapshot.MaxDepth)
	}

	l := m.Limits()
	if l.MaxCapacity != 4096 || !l.TraceLifetime {
		t.Errorf("Limits() = %+v", l)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[runtime]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Runtime.InitialCapacity != vm.MinCapacity {
		t.Errorf("default initial-capacity = %d, want %d", m.Runtime.InitialCapacity, vm.MinCapacity)
	}
	if m.Runtime.MaxCapacity != 0 {
		t.Errorf("default max-capacity = %d, want 0", m.Runtime.MaxCapacity)
	}
	if m.Log.Verbosity != 1 {
		t.Errorf("default verbosity = %d, want 1", m.Log.Verbosity)
	}
	if m.LogPath() != nil {
		t.Error("default log path should be nil")
	}
	if want := filepath.Join(m.Dir, ".kut", "snapshots.db"); m.DatabasePath() != want {
		t.Errorf("default database = %q, want %q", m.DatabasePath(), want)
	}
	if m.Snapshot.MaxDepth != snapshot.DefaultMaxDepth {
		t.Errorf("default max-depth = %d", m.Snapshot.MaxDepth)
	}
}

func TestLoadManifestParseError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[runtime\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("malformed TOML should fail to load")
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[runtime]
max-capacity = 64
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Runtime.MaxCapacity != 64 {
		t.Errorf("max-capacity = %d, want 64", m.Runtime.MaxCapacity)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no kut.toml exists")
	}
}

func TestDefault(t *testing.T) {
	m := Default("/app")
	if m.DatabasePath() != "/app/.kut/snapshots.db" {
		t.Errorf("database = %q", m.DatabasePath())
	}
	if m.Limits() != (vm.Limits{}) {
		t.Errorf("default limits = %+v, want zero", m.Limits())
	}
}
