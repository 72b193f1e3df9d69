// Package manifest handles tagbox.toml generator configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file FindAndLoad looks for.
const FileName = "tagbox.toml"

// Variant kinds.
const (
	KindUnit   = "unit"
	KindSingle = "single"
	KindTuple  = "tuple"
	KindStruct = "struct"
)

// Manifest represents a tagbox.toml file.
type Manifest struct {
	Output Output  `toml:"output"`
	Unions []Union `toml:"union"`

	// Dir is the directory containing the tagbox.toml file (set at load time).
	Dir string `toml:"-"`
}

// Output configures where generated files go.
type Output struct {
	Dir    string `toml:"dir"`
	Suffix string `toml:"suffix"`
}

// Union describes one generated union.
type Union struct {
	Name      string `toml:"name"`
	Container string `toml:"container"`
	Package   string `toml:"package"`

	// Derive lists extra container methods: "equal", "compare".
	Derive []string `toml:"derive"`

	// Imports maps a package name used in variant types to its import path.
	Imports map[string]string `toml:"imports"`

	Variants []Variant `toml:"variant"`
}

// Variant is one entry of a union. Which of Type, Types and Fields is used
// depends on Kind.
type Variant struct {
	Name   string   `toml:"name"`
	Kind   string   `toml:"kind"`
	Type   string   `toml:"type"`
	Types  []string `toml:"types"`
	Fields []Field  `toml:"fields"`
}

// Field is a named field of a struct variant.
type Field struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Load parses a tagbox.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes tagbox.toml content and fills in defaults. Dir is left
// empty.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}

	// Defaults
	if m.Output.Dir == "" {
		m.Output.Dir = "."
	}
	if m.Output.Suffix == "" {
		m.Output.Suffix = "_tagbox.go"
	}
	for i := range m.Unions {
		u := &m.Unions[i]
		if u.Container == "" {
			u.Container = u.Name + "Container"
		}
		for j := range u.Variants {
			v := &u.Variants[j]
			v.Name = ToPascalCase(v.Name)
			if v.Kind == "" {
				v.Kind = inferKind(*v)
			}
		}
	}
	return &m, nil
}

func inferKind(v Variant) string {
	switch {
	case len(v.Fields) > 0:
		return KindStruct
	case len(v.Types) > 0:
		return KindTuple
	case v.Type != "":
		return KindSingle
	}
	return KindUnit
}

// FindAndLoad walks up from startDir to find a tagbox.toml file,
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

// OutputDir returns the absolute directory generated files are written to.
func (m *Manifest) OutputDir() string {
	return filepath.Join(m.Dir, m.Output.Dir)
}

// OutputPath returns the file the given union is generated into.
func (m *Manifest) OutputPath(u Union) string {
	return filepath.Join(m.OutputDir(), ToSnakeCase(u.Name)+m.Output.Suffix)
}

// Union returns the union with the given name.
func (m *Manifest) Union(name string) (Union, bool) {
	for _, u := range m.Unions {
		if u.Name == name {
			return u, true
		}
	}
	return Union{}, false
}
