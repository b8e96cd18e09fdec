// Package manifest handles fern.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a fern.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Run     Run     `toml:"run"`

	// Dir is the directory containing the fern.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Run configures how the interpreter runs the project.
type Run struct {
	// Entry is the script executed when none is given on the command line.
	Entry string `toml:"entry"`

	// Trace enables per-instruction execution tracing.
	Trace bool `toml:"trace"`

	// Disassemble dumps the compiled chunk before running.
	Disassemble bool `toml:"disassemble"`

	// Verbosity raises the log level (0 = quiet).
	Verbosity int `toml:"verbosity"`
}

// Load parses a fern.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "fern.toml")
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

	// Defaults
	if m.Run.Entry == "" {
		m.Run.Entry = "main.fern"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a fern.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "fern.toml")
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

// EntryPath returns the absolute path of the configured entry script.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Run.Entry) {
		return m.Run.Entry
	}
	return filepath.Join(m.Dir, m.Run.Entry)
}
