package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// PairSpec describes one [[pair]] entry in glslcheck.toml.
type PairSpec struct {
	Name     string `toml:"name"`
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

// SuiteSpec describes the optional [suite] section.
type SuiteSpec struct {
	Jobs int `toml:"jobs"`
}

// Manifest is a parsed, validated glslcheck.toml. Relative shader paths are
// resolved against the manifest's directory.
type Manifest struct {
	Root  string
	Suite SuiteSpec
	Pairs []PairSpec
}

var (
	// ErrNoPairs indicates the manifest declares no [[pair]] entries.
	ErrNoPairs = errors.New("no [[pair]] entries")
	// ErrPairIncomplete indicates a [[pair]] lacks vertex or fragment.
	ErrPairIncomplete = errors.New("pair must set vertex and fragment")
)

type manifestFile struct {
	Suite SuiteSpec  `toml:"suite"`
	Pairs []PairSpec `toml:"pair"`
}

// LoadManifest parses and validates a suite manifest.
func LoadManifest(path string) (Manifest, error) {
	var cfg manifestFile
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if len(cfg.Pairs) == 0 {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrNoPairs)
	}

	root := filepath.Dir(path)
	m := Manifest{
		Root:  root,
		Suite: cfg.Suite,
		Pairs: make([]PairSpec, 0, len(cfg.Pairs)),
	}
	for i, pair := range cfg.Pairs {
		vertex := strings.TrimSpace(pair.Vertex)
		fragment := strings.TrimSpace(pair.Fragment)
		if vertex == "" || fragment == "" {
			return Manifest{}, fmt.Errorf("%s: pair %d: %w", path, i+1, ErrPairIncomplete)
		}
		name := strings.TrimSpace(pair.Name)
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(vertex), filepath.Ext(vertex))
		}
		m.Pairs = append(m.Pairs, PairSpec{
			Name:     name,
			Vertex:   resolveAgainst(root, vertex),
			Fragment: resolveAgainst(root, fragment),
		})
	}
	return m, nil
}

func resolveAgainst(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
