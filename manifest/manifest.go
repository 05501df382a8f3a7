// Package manifest handles kut.toml runtime configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/kut/vm"
	"github.com/chazu/kut/vm/snapshot"
)

// FileName is the name of the configuration file.
const FileName = "kut.toml"

// Manifest represents a kut.toml configuration.
type Manifest struct {
	Runtime  Runtime        `toml:"runtime"`
	Log      Log            `toml:"log"`
	Snapshot SnapshotConfig `toml:"snapshot"`

	// Dir is the directory containing the kut.toml file (set at load time).
	Dir string `toml:"-"`
}

// Runtime configures the object model.
type Runtime struct {
	InitialCapacity int  `toml:"initial-capacity"`
	MaxCapacity     int  `toml:"max-capacity"`
	TraceLifetime   bool `toml:"trace-lifetime"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// SnapshotConfig configures the snapshot store.
type SnapshotConfig struct {
	Database string `toml:"database"`
	MaxDepth int    `toml:"max-depth"`
}

// Default returns the configuration used when no kut.toml exists.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Runtime.InitialCapacity < vm.MinCapacity {
		m.Runtime.InitialCapacity = vm.MinCapacity
	}
	if m.Runtime.MaxCapacity < 0 {
		m.Runtime.MaxCapacity = 0
	}
	if m.Log.Verbosity == 0 {
		m.Log.Verbosity = 1
	}
	if m.Snapshot.Database == "" {
		m.Snapshot.Database = filepath.Join(".kut", "snapshots.db")
	}
	if m.Snapshot.MaxDepth <= 0 {
		m.Snapshot.MaxDepth = snapshot.DefaultMaxDepth
	}
}

// Load parses a kut.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a kut.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Limits converts the runtime section to vm.Limits.
func (m *Manifest) Limits() vm.Limits {
	return vm.Limits{
		MaxCapacity:   m.Runtime.MaxCapacity,
		TraceLifetime: m.Runtime.TraceLifetime,
	}
}

// DatabasePath returns the snapshot database path, resolved against Dir.
func (m *Manifest) DatabasePath() string {
	if filepath.IsAbs(m.Snapshot.Database) {
		return m.Snapshot.Database
	}
	return filepath.Join(m.Dir, m.Snapshot.Database)
}

// LogPath returns the log file path resolved against Dir, or nil for stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.Log.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.Dir, path)
	}
	return &path
}
