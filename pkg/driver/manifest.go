package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ExecMode names one of the two execution backends.
type ExecMode string

const (
	ModeTreewalker ExecMode = "treewalker"
	ModeBytecode   ExecMode = "bytecode"
)

// ParseExecMode validates a backend name from a flag or manifest.
func ParseExecMode(raw string) (ExecMode, error) {
	switch ExecMode(raw) {
	case ModeTreewalker:
		return ModeTreewalker, nil
	case ModeBytecode:
		return ModeBytecode, nil
	}
	return "", fmt.Errorf("unknown exec mode %q (expected treewalker or bytecode)", raw)
}

// Manifest describes a fixture corpus: which suites exist, where their
// scripts live, and which backends each suite runs under.
type Manifest struct {
	Path   string
	Suites []*Suite
}

// Suite is one directory of fixture scripts.
type Suite struct {
	Name  string
	Dir   string
	Modes []ExecMode
	Skip  map[string]string
}

// RunsUnder reports whether the suite is expected to pass in mode.
func (s *Suite) RunsUnder(mode ExecMode) bool {
	for _, m := range s.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

type manifestDisk struct {
	Suites []suiteDisk `yaml:"suites"`
}

type suiteDisk struct {
	Name  string            `yaml:"name"`
	Dir   string            `yaml:"dir"`
	Modes []string          `yaml:"modes"`
	Skip  map[string]string `yaml:"skip"`
}

// LoadManifest parses and validates a suite.yml file. Suite directories are
// resolved relative to the manifest's location.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw manifestDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}

	manifest := &Manifest{Path: path}
	base := filepath.Dir(path)
	seen := make(map[string]struct{}, len(raw.Suites))
	for _, sd := range raw.Suites {
		if sd.Name == "" {
			return nil, fmt.Errorf("manifest: suite with empty name in %s", path)
		}
		if _, ok := seen[sd.Name]; ok {
			return nil, fmt.Errorf("manifest: duplicate suite name %q in %s", sd.Name, path)
		}
		seen[sd.Name] = struct{}{}
		if sd.Dir == "" {
			return nil, fmt.Errorf("manifest: suite %q has no dir", sd.Name)
		}
		if len(sd.Modes) == 0 {
			return nil, fmt.Errorf("manifest: suite %q lists no modes", sd.Name)
		}
		suite := &Suite{
			Name: sd.Name,
			Dir:  filepath.Join(base, sd.Dir),
			Skip: sd.Skip,
		}
		for _, m := range sd.Modes {
			mode, err := ParseExecMode(m)
			if err != nil {
				return nil, fmt.Errorf("manifest: suite %q: %w", sd.Name, err)
			}
			suite.Modes = append(suite.Modes, mode)
		}
		manifest.Suites = append(manifest.Suites, suite)
	}
	if len(manifest.Suites) == 0 {
		return nil, fmt.Errorf("manifest: %s declares no suites", path)
	}
	return manifest, nil
}
