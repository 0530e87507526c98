// Package project loads and validates the package manifest, and groups a
// manifest with the modules that belong to it.
package project

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/sable-lang/sable/internal/ast"
)

// ManifestFile is the manifest's file name at the package root.
const ManifestFile = "sable.yaml"

// Manifest is the parsed sable.yaml. Configuration problems here are Go
// errors, not diagnostics; there is no source span to attach them to.
type Manifest struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	License      string            `yaml:"license,omitempty"`
	Description  string            `yaml:"description,omitempty"`
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
}

// Package is one unit of compilation: a manifest plus the modules it owns.
type Package struct {
	Manifest *Manifest
	Modules  []*ast.Module
}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses and validates manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the fields every package must carry.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest: missing package name")
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("manifest: invalid package name %q: must be lowercase letters, digits and underscores", m.Name)
	}
	if m.Version == "" {
		return fmt.Errorf("manifest: missing package version")
	}
	for dep := range m.Dependencies {
		if !namePattern.MatchString(dep) {
			return fmt.Errorf("manifest: invalid dependency name %q", dep)
		}
	}
	return nil
}
