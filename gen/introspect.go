package gen

import (
	"fmt"
	"go/types"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/chazu/tagbox/manifest"
)

// ShapeOptions selects a shape struct and names what is generated from it.
type ShapeOptions struct {
	// Pattern is the package to load, as accepted by go list. Default ".".
	Pattern string

	// Type is the shape struct's name.
	Type string

	// Name is the union's name. Default: Type without a "Shape" suffix, in
	// PascalCase.
	Name string

	// Container is the container's name. Default: Name + "Container".
	Container string

	Derive Derive
}

// ShapeResult is a union read from a shape struct.
type ShapeResult struct {
	Union Union

	// Dir is the directory of the package that declares the shape.
	Dir string
}

// IntrospectShape loads a package and reads the union described by a shape
// struct. Each field of the struct is a variant, in order:
//
//	type itemShape struct {
//		Empty   struct{}
//		Number  uint32
//		Triple  struct{ A uint16; B bool; C int8 } `tagbox:"tuple"`
//		Labeled struct{ A uint32; B bool }        `tagbox:"fields"`
//	}
//
// An empty struct is a unit variant. A struct-typed field tagged "tuple"
// becomes a tuple of its field types, and one tagged "fields" keeps the
// field names. Any other field is a single-value variant.
func IntrospectShape(opts ShapeOptions) (*ShapeResult, error) {
	if opts.Pattern == "" {
		opts.Pattern = "."
	}
	cfg := &packages.Config{
		// Shape structs are usually unexported, so type-check from source
		// rather than reading export data.
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedFiles |
			packages.NeedSyntax | packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, opts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", opts.Pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for %s", opts.Pattern)
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkgs[0].Errors)
	}

	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", opts.Pattern)
	}

	obj := pkg.Types.Scope().Lookup(opts.Type)
	if obj == nil {
		return nil, fmt.Errorf("%s: no type %s", pkg.PkgPath, opts.Type)
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%s.%s is not a type", pkg.PkgPath, opts.Type)
	}
	st, ok := tn.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%s.%s is not a struct", pkg.PkgPath, opts.Type)
	}

	u, err := unionFromStruct(st, pkg.Types, opts)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", pkg.PkgPath, opts.Type, err)
	}

	res := &ShapeResult{Union: *u}
	if len(pkg.GoFiles) > 0 {
		res.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	return res, nil
}

func unionFromStruct(st *types.Struct, pkg *types.Package, opts ShapeOptions) (*Union, error) {
	name := opts.Name
	if name == "" {
		name = manifest.ToPascalCase(strings.TrimSuffix(opts.Type, "Shape"))
	}
	container := opts.Container
	if container == "" {
		container = name + "Container"
	}

	imports := make(map[string]string)
	u := &Union{
		Package:   pkg.Name(),
		Name:      name,
		Container: container,
		Derive:    opts.Derive,
		Imports:   imports,
	}
	qual := qualifier(pkg, imports)

	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		tag := reflect.StructTag(st.Tag(i)).Get("tagbox")
		v, err := variantFromField(f, tag, qual)
		if err != nil {
			return nil, err
		}
		u.Variants = append(u.Variants, v)
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func variantFromField(f *types.Var, tag string, qual types.Qualifier) (Variant, error) {
	v := Variant{Name: f.Name()}
	inner, isStruct := f.Type().(*types.Struct)

	switch {
	case isStruct && inner.NumFields() == 0:
		v.Shape = Unit
	case tag == "tuple" || tag == "fields":
		if !isStruct {
			return Variant{}, fmt.Errorf("field %s is tagged %q but is not a struct literal type", f.Name(), tag)
		}
		v.Shape = Tuple
		if tag == "fields" {
			v.Shape = Struct
		}
		for j := 0; j < inner.NumFields(); j++ {
			field := inner.Field(j)
			name := field.Name()
			if v.Shape == Tuple {
				name = tupleFieldName(j)
			}
			v.Fields = append(v.Fields, Field{Name: name, Type: types.TypeString(field.Type(), qual)})
		}
	case tag != "":
		return Variant{}, fmt.Errorf("field %s has unknown tagbox tag %q", f.Name(), tag)
	default:
		v.Shape = Single
		v.Fields = []Field{{Name: singleField, Type: types.TypeString(f.Type(), qual)}}
	}
	return v, nil
}

// qualifier writes types from other packages by package name and records
// the import path each name stands for.
func qualifier(pkg *types.Package, imports map[string]string) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		imports[other.Name()] = other.Path()
		return other.Name()
	}
}
