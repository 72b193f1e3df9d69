// Package gen generates one-word tagged containers for Go unions.
//
// A Union is a list of variants, each with a shape: a unit, a single value,
// a tuple of values, or a struct of named fields. Variant i is stored under
// discriminant i. Generate turns a Union into Go source: the union
// interface, one struct per variant, the tagbox.Variants table and a
// container type holding a single tagbox.Box.
//
// Unions come from a tagbox.toml file (FromManifest) or from a shape struct
// in a Go package (IntrospectShape).
package gen

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"

	"github.com/chazu/tagbox/discriminant"
	"github.com/chazu/tagbox/manifest"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("gen: invalid union")

// Shape is the form of a variant's payload.
type Shape int

const (
	Unit Shape = iota
	Single
	Tuple
	Struct
)

func (s Shape) String() string {
	switch s {
	case Unit:
		return manifest.KindUnit
	case Single:
		return manifest.KindSingle
	case Tuple:
		return manifest.KindTuple
	case Struct:
		return manifest.KindStruct
	}
	return "Shape(" + strconv.Itoa(int(s)) + ")"
}

// ParseShape maps a manifest kind to a Shape.
func ParseShape(kind string) (Shape, error) {
	switch kind {
	case manifest.KindUnit:
		return Unit, nil
	case manifest.KindSingle:
		return Single, nil
	case manifest.KindTuple:
		return Tuple, nil
	case manifest.KindStruct:
		return Struct, nil
	}
	return 0, fmt.Errorf("%w: unknown variant kind %q", ErrInvalid, kind)
}

// Field is one field of a variant's generated struct.
type Field struct {
	Name string
	Type string // Go type expression, e.g. "uint32" or "time.Duration"
}

// Variant is one member of a union.
type Variant struct {
	Name   string
	Shape  Shape
	Fields []Field
}

// Derive selects optional container methods.
type Derive struct {
	Equal   bool
	Compare bool
}

// ParseDerive reads a manifest derive list.
func ParseDerive(names []string) (Derive, error) {
	var d Derive
	for _, n := range names {
		switch n {
		case "equal":
			d.Equal = true
		case "compare":
			d.Compare = true
		default:
			return Derive{}, fmt.Errorf("%w: unknown derive %q", ErrInvalid, n)
		}
	}
	return d, nil
}

// Union is the generator's model of one union.
type Union struct {
	Package   string
	Name      string
	Container string
	Derive    Derive

	// Imports maps package names used in field types to import paths.
	Imports map[string]string

	Variants []Variant
}

// Ordinal returns the discriminant of the named variant.
func (u *Union) Ordinal(name string) (discriminant.Discriminant, bool) {
	for i, v := range u.Variants {
		if v.Name == name {
			return discriminant.Discriminant(i), true
		}
	}
	return 0, false
}

// Validate checks that u can be generated.
func (u *Union) Validate() error {
	if !token.IsIdentifier(u.Package) {
		return fmt.Errorf("%w: package name %q", ErrInvalid, u.Package)
	}
	if err := checkName("union", u.Name); err != nil {
		return err
	}
	if err := checkName("container", u.Container); err != nil {
		return err
	}
	if u.Container == u.Name {
		return fmt.Errorf("%w: container and union are both named %s", ErrInvalid, u.Name)
	}
	if len(u.Variants) == 0 {
		return fmt.Errorf("%w: %s has no variants", ErrInvalid, u.Name)
	}
	if limit := int(discriminant.Max) + 1; len(u.Variants) > limit {
		return fmt.Errorf("%w: %s has %d variants, the %s split allows %d",
			ErrInvalid, u.Name, len(u.Variants), discriminant.Active(), limit)
	}

	generated := generatedNames(u)
	if what, ok := generated[u.Container]; ok && what != "container" {
		return fmt.Errorf("%w: container %s clashes with the generated %s", ErrInvalid, u.Container, what)
	}

	seen := make(map[string]bool)
	for _, v := range u.Variants {
		if err := checkName("variant", v.Name); err != nil {
			return err
		}
		if what, ok := generated[v.Name]; ok {
			return fmt.Errorf("%w: variant %s.%s clashes with the generated %s", ErrInvalid, u.Name, v.Name, what)
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: %s.%s declared twice", ErrInvalid, u.Name, v.Name)
		}
		seen[v.Name] = true

		if err := u.validateVariant(v); err != nil {
			return err
		}
	}
	return nil
}

func (u *Union) validateVariant(v Variant) error {
	switch v.Shape {
	case Unit:
		if len(v.Fields) != 0 {
			return fmt.Errorf("%w: unit variant %s has fields", ErrInvalid, v.Name)
		}
		return nil
	case Single:
		if len(v.Fields) != 1 {
			return fmt.Errorf("%w: single variant %s needs exactly one type", ErrInvalid, v.Name)
		}
	case Tuple, Struct:
		if len(v.Fields) == 0 {
			return fmt.Errorf("%w: %s variant %s needs at least one field", ErrInvalid, v.Shape, v.Name)
		}
	default:
		return fmt.Errorf("%w: variant %s has %v", ErrInvalid, v.Name, v.Shape)
	}

	names := make(map[string]bool)
	for _, f := range v.Fields {
		if !token.IsIdentifier(f.Name) || token.IsKeyword(f.Name) {
			return fmt.Errorf("%w: %s field name %q", ErrInvalid, v.Name, f.Name)
		}
		if names[f.Name] {
			return fmt.Errorf("%w: %s field %s declared twice", ErrInvalid, v.Name, f.Name)
		}
		names[f.Name] = true

		t, err := parseType(f.Type, u.Imports)
		if err != nil {
			return fmt.Errorf("%w: %s.%s: %v", ErrInvalid, v.Name, f.Name, err)
		}
		if u.Derive.Compare && !t.ordering() {
			return fmt.Errorf("%w: %s.%s has type %s, which cannot be ordered for derive compare",
				ErrInvalid, v.Name, f.Name, f.Type)
		}
	}
	return nil
}

func checkName(what, name string) error {
	if !token.IsIdentifier(name) || !token.IsExported(name) {
		return fmt.Errorf("%w: %s name %q must be an exported identifier", ErrInvalid, what, name)
	}
	if manifest.IsReservedName(name) {
		return fmt.Errorf("%w: %s name %q is reserved", ErrInvalid, what, name)
	}
	return nil
}

// FromManifest converts every union in m. Variant type names must be unique
// across unions that share a package.
func FromManifest(m *manifest.Manifest) ([]Union, error) {
	var unions []Union
	owner := make(map[string]string) // package.variant -> union
	for _, mu := range m.Unions {
		u, err := fromManifestUnion(mu)
		if err != nil {
			return nil, fmt.Errorf("union %s: %w", mu.Name, err)
		}
		for _, v := range u.Variants {
			key := u.Package + "." + v.Name
			if prev, ok := owner[key]; ok {
				return nil, fmt.Errorf("%w: variant %s is declared by both %s and %s in package %s",
					ErrInvalid, v.Name, prev, u.Name, u.Package)
			}
			owner[key] = u.Name
		}
		unions = append(unions, u)
	}
	return unions, nil
}

func fromManifestUnion(mu manifest.Union) (Union, error) {
	derive, err := ParseDerive(mu.Derive)
	if err != nil {
		return Union{}, err
	}
	u := Union{
		Package:   mu.Package,
		Name:      mu.Name,
		Container: mu.Container,
		Derive:    derive,
		Imports:   mu.Imports,
	}
	for _, mv := range mu.Variants {
		shape, err := ParseShape(mv.Kind)
		if err != nil {
			return Union{}, err
		}
		v := Variant{Name: mv.Name, Shape: shape}
		switch shape {
		case Single:
			v.Fields = []Field{{Name: singleField, Type: mv.Type}}
		case Tuple:
			v.Fields = tupleFields(mv.Types)
		case Struct:
			for _, f := range mv.Fields {
				v.Fields = append(v.Fields, Field{Name: f.Name, Type: f.Type})
			}
		}
		u.Variants = append(u.Variants, v)
	}
	if err := u.Validate(); err != nil {
		return Union{}, err
	}
	return u, nil
}

// singleField names the payload field of a single-value variant.
const singleField = "Value"

func tupleFields(types []string) []Field {
	fields := make([]Field, len(types))
	for i, t := range types {
		fields[i] = Field{Name: tupleFieldName(i), Type: t}
	}
	return fields
}
