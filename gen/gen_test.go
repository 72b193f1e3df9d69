package gen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/tagbox/manifest"
)

// itemUnion is the four-variant union used throughout the tests.
func itemUnion() *Union {
	return &Union{
		Package:   "fixture",
		Name:      "Item",
		Container: "Container",
		Derive:    Derive{Equal: true, Compare: true},
		Variants: []Variant{
			{Name: "Empty", Shape: Unit},
			{Name: "Number", Shape: Single, Fields: []Field{{"Value", "uint32"}}},
			{Name: "Triple", Shape: Tuple, Fields: []Field{{"F0", "uint16"}, {"F1", "bool"}, {"F2", "int8"}}},
			{Name: "Labeled", Shape: Struct, Fields: []Field{{"A", "uint32"}, {"B", "bool"}}},
		},
	}
}

func updateGolden(t *testing.T, path, content string) {
	t.Helper()
	if os.Getenv("UPDATE_GOLDEN") == "" {
		return
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func compareGolden(t *testing.T, path, got string) {
	t.Helper()
	expected, err := os.ReadFile(path)
	require.NoError(t, err, "golden file %s is missing; run with UPDATE_GOLDEN=1 to create it", path)
	require.Equal(t, string(expected), got, "output differs from golden file %s; run with UPDATE_GOLDEN=1 to update", path)
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	require.NoError(t, itemUnion().Validate())

	tests := []struct {
		name   string
		mutate func(u *Union)
		want   string
	}{
		{"no variants", func(u *Union) { u.Variants = nil }, "no variants"},
		{"bad package", func(u *Union) { u.Package = "my-pkg" }, "package name"},
		{"unexported union", func(u *Union) { u.Name = "item" }, "exported identifier"},
		{"container clash", func(u *Union) { u.Container = "Item" }, "both named"},
		{"duplicate variant", func(u *Union) { u.Variants[1].Name = "Empty" }, "declared twice"},
		{"variant named like container", func(u *Union) { u.Variants[0].Name = "Container" }, "clashes"},
		{"variant named like variants table", func(u *Union) { u.Variants[0].Name = "ItemVariants" }, "generated variants table"},
		{"variant named like ordinal", func(u *Union) { u.Variants[0].Name = "ItemNumberOrdinal" }, "generated ordinal constant"},
		{"variant named like constructor", func(u *Union) { u.Variants[0].Name = "ContainerFromNumber" }, "generated constructor"},
		{"variant named like generic constructor", func(u *Union) { u.Variants[0].Name = "ContainerFrom" }, "generated constructor"},
		{"container named like variants table", func(u *Union) { u.Container = "ItemVariants" }, "generated variants table"},
		{"reserved variant", func(u *Union) { u.Variants[0].Name = "Ordinal" }, "reserved"},
		{"unit with fields", func(u *Union) { u.Variants[0].Fields = []Field{{"X", "int"}} }, "unit variant"},
		{"empty tuple", func(u *Union) { u.Variants[2].Fields = nil }, "at least one field"},
		{"single with two", func(u *Union) {
			u.Variants[1].Fields = append(u.Variants[1].Fields, Field{"Other", "int"})
		}, "exactly one"},
		{"duplicate field", func(u *Union) { u.Variants[3].Fields[1].Name = "A" }, "declared twice"},
		{"keyword field", func(u *Union) { u.Variants[3].Fields[0].Name = "type" }, "field name"},
		{"bad type", func(u *Union) { u.Variants[1].Fields[0].Type = "uint32)" }, "Number.Value"},
		{"missing import", func(u *Union) { u.Variants[1].Fields[0].Type = "time.Duration" }, "no import path"},
		{"unordered compare", func(u *Union) { u.Variants[1].Fields[0].Type = "[]byte" }, "cannot be ordered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := itemUnion()
			tt.mutate(u)
			err := u.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestOrdinal(t *testing.T) {
	u := itemUnion()
	for i, name := range []string{"Empty", "Number", "Triple", "Labeled"} {
		d, ok := u.Ordinal(name)
		require.True(t, ok)
		require.EqualValues(t, i, d)
	}
	_, ok := u.Ordinal("Missing")
	require.False(t, ok)
}

func TestShapeAndDerive(t *testing.T) {
	for _, s := range []Shape{Unit, Single, Tuple, Struct} {
		got, err := ParseShape(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := ParseShape("record")
	require.ErrorIs(t, err, ErrInvalid)
	require.Equal(t, "Shape(9)", Shape(9).String())

	d, err := ParseDerive([]string{"compare"})
	require.NoError(t, err)
	require.Equal(t, Derive{Compare: true}, d)
	_, err = ParseDerive([]string{"hash"})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestFromManifest(t *testing.T) {
	m, err := manifest.Parse([]byte(`
[[union]]
name = "Item"
container = "Container"
package = "fixture"
derive = ["equal"]

[union.imports]
time = "time"

[[union.variant]]
name = "empty"

[[union.variant]]
name = "number"
type = "uint32"

[[union.variant]]
name = "triple"
types = ["uint16", "bool", "int8"]

[[union.variant]]
name = "labeled"
fields = [{ name = "A", type = "uint32" }, { name = "B", type = "bool" }]

[[union.variant]]
name = "elapsed"
type = "time.Duration"
`))
	require.NoError(t, err)

	unions, err := FromManifest(m)
	require.NoError(t, err)
	require.Len(t, unions, 1)

	u := unions[0]
	require.Equal(t, Derive{Equal: true}, u.Derive)
	require.Equal(t, []Variant{
		{Name: "Empty", Shape: Unit},
		{Name: "Number", Shape: Single, Fields: []Field{{"Value", "uint32"}}},
		{Name: "Triple", Shape: Tuple, Fields: []Field{{"F0", "uint16"}, {"F1", "bool"}, {"F2", "int8"}}},
		{Name: "Labeled", Shape: Struct, Fields: []Field{{"A", "uint32"}, {"B", "bool"}}},
		{Name: "Elapsed", Shape: Single, Fields: []Field{{"Value", "time.Duration"}}},
	}, u.Variants)
}

func TestFromManifestSharedVariant(t *testing.T) {
	m, err := manifest.Parse([]byte(`
[[union]]
name = "A"
package = "p"
[[union.variant]]
name = "Same"

[[union]]
name = "B"
package = "p"
[[union.variant]]
name = "Same"
`))
	require.NoError(t, err)
	_, err = FromManifest(m)
	require.ErrorIs(t, err, ErrInvalid)
	require.ErrorContains(t, err, "declared by both A and B")
}

// ---------------------------------------------------------------------------
// Types and names
// ---------------------------------------------------------------------------

func TestParseType(t *testing.T) {
	imports := map[string]string{"time": "time", "big": "math/big"}
	tests := []struct {
		src       string
		class     typeClass
		basic     bool
		wantError bool
	}{
		{src: "uint32", class: classOrdered, basic: true},
		{src: "string", class: classOrdered, basic: true},
		{src: "bool", class: classBool, basic: true},
		{src: "complex128", class: classComparable, basic: true},
		{src: "error", class: classComparable},
		{src: "Handle", class: classNamed},
		{src: "time.Duration", class: classNamed},
		{src: "*big.Int", class: classComparable},
		{src: "[4]byte", class: classComparable, basic: true},
		{src: "[2][]int", class: classOpaque},
		{src: "[]string", class: classOpaque},
		{src: "map[string]int", class: classOpaque},
		{src: "<-chan int", class: classComparable},
		{src: "struct{}", class: classComparable, basic: true},
		{src: "", wantError: true},
		{src: "os.File", wantError: true},
		{src: "func()", wantError: true},
		{src: "interface{ M() }", wantError: true},
		{src: "[n]int", wantError: true},
	}
	for _, tt := range tests {
		got, err := parseType(tt.src, imports)
		if tt.wantError {
			require.Error(t, err, "parseType(%q)", tt.src)
			continue
		}
		require.NoError(t, err, "parseType(%q)", tt.src)
		require.Equal(t, tt.class, got.class, "class of %q", tt.src)
		require.Equal(t, tt.basic, got.basic, "basic of %q", tt.src)
	}
}

func TestNaming(t *testing.T) {
	u := itemUnion()
	v := u.Variants[1]
	require.Equal(t, "ItemNumberOrdinal", ordinalName(u, v))
	require.Equal(t, "ItemVariants", variantsTypeName(u))
	require.Equal(t, "ContainerFromNumber", constructorName(u, v))
	require.Equal(t, "isItem", markerMethod(u))
	require.Equal(t, "itemVariantCount", private(u, "VariantCount"))

	tests := []struct{ in, want string }{
		{"Value", "value"},
		{"F0", "f0"},
		{"Type", "type_"},
		{"String", "string_"},
		{"HTTPRoute", "httpRoute"},
		{"ID", "id"},
		{"lower", "lower"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, paramName(tt.in), "paramName(%q)", tt.in)
	}
}

// ---------------------------------------------------------------------------
// Emission
// ---------------------------------------------------------------------------

func TestGenerateItem(t *testing.T) {
	out, err := Generate(itemUnion())
	require.NoError(t, err)
	code := string(out)

	_, err = parser.ParseFile(token.NewFileSet(), "item_tagbox.go", out, parser.AllErrors)
	require.NoError(t, err, "generated code must parse:\n%s", code)

	for _, want := range []string{
		"// Code generated by tagboxgen. DO NOT EDIT.",
		"package fixture",
		`"github.com/chazu/tagbox"`,
		`"github.com/fxamacker/cbor/v2"`,
		"ItemEmptyOrdinal tagbox.Discriminant = iota",
		"ItemLabeledOrdinal\n",
		"const itemVariantCount = 4",
		"type Item interface {",
		"type Number struct {\n\tValue uint32\n}",
		"F2 int8",
		"func (Triple) Ordinal() tagbox.Discriminant {",
		"var _ tagbox.Variants[Item] = ItemVariants{}",
		"return tagbox.New[Item](v, ItemNumberOrdinal)",
		"return tagbox.IntoInner[Labeled](b)",
		"fn(tagbox.Read[Triple](b))",
		"panic(tagbox.Exhausted(vs.Name(), vs.Len(), d))",
		"panic(tagbox.UnknownVariant(\"Item\", v))",
		"func (ItemVariants) Drop(Item) {}",
		"var _ tagbox.Container[Item] = (*Container)(nil)",
		"func ContainerFromTriple(f0 uint16, f1 bool, f2 int8) Container {",
		"func ContainerFromLabeled(a uint32, b bool) Container {",
		"tagbox.Take(&c.value)",
		"func (c *Container) Equal(o *Container) bool {",
		"func (c *Container) Compare(o *Container) int {",
		"if c := tagbox.CompareBool(x.F1, y.F1); c != 0 {",
		"return cmp.Compare(x.F2, y.F2)",
		"return x.A == y.A && x.B == y.B",
		"codec.UnmarshalBox[Item](ItemVariants{}, data, decodeItemPayload)",
	} {
		require.Contains(t, code, want)
	}
	require.NotContains(t, code, "ContainerFromEmpty")

	goldenFile := filepath.Join("testdata", "item_tagbox.go.golden")
	updateGolden(t, goldenFile, code)
	compareGolden(t, goldenFile, code)
}

// The fixture package checks in generator output; it must match what
// Generate emits today.
func TestFixtureOutputCurrent(t *testing.T) {
	fixtureDir := filepath.Join("..", "internal", "fixture")

	item, err := Generate(itemUnion())
	require.NoError(t, err)
	current, err := os.ReadFile(filepath.Join(fixtureDir, "item_tagbox.go"))
	require.NoError(t, err)
	require.Equal(t, string(current), string(item), "item_tagbox.go is stale; run go generate ./internal/fixture")

	m, err := manifest.Load(fixtureDir)
	require.NoError(t, err)
	unions, err := FromManifest(m)
	require.NoError(t, err)
	require.Len(t, unions, 1)

	held, err := Generate(&unions[0])
	require.NoError(t, err)
	path := m.OutputPath(m.Unions[0])
	require.Equal(t, "held_tagbox.go", filepath.Base(path))
	current, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(current), string(held), "held_tagbox.go is stale; run go generate ./internal/fixture")
}

func TestGenerateDrops(t *testing.T) {
	u := &Union{
		Package:   "res",
		Name:      "Resource",
		Container: "Handle",
		Imports:   map[string]string{"os": "os"},
		Variants: []Variant{
			{Name: "Closed", Shape: Unit},
			{Name: "File", Shape: Struct, Fields: []Field{{"Path", "string"}, {"F", "*os.File"}}},
			{Name: "Data", Shape: Single, Fields: []Field{{"Value", "[]byte"}}},
		},
	}
	out, err := Generate(u)
	require.NoError(t, err)
	code := string(out)

	require.Contains(t, code, "func (ResourceVariants) Drop(v Resource) {")
	require.Contains(t, code, "tagbox.Drop(v.F)")
	require.Contains(t, code, "tagbox.Drop(v.Value)")
	require.NotContains(t, code, "tagbox.Drop(v.Path)")
	require.NotContains(t, code, "func (c *Handle) Equal")
	require.NotContains(t, code, "func compareResource")
}

func TestGenerateUnitsOnly(t *testing.T) {
	u := &Union{
		Package:   "colors",
		Name:      "Color",
		Container: "Paint",
		Derive:    Derive{Equal: true, Compare: true},
		Variants:  []Variant{{Name: "Red", Shape: Unit}, {Name: "Green", Shape: Unit}},
	}
	out, err := Generate(u)
	require.NoError(t, err)
	code := string(out)

	_, err = parser.ParseFile(token.NewFileSet(), "color_tagbox.go", out, parser.AllErrors)
	require.NoError(t, err)
	require.Contains(t, code, "func equalColor(x, y Color) bool {\n\treturn true\n}")
	require.Contains(t, code, "func compareColor(x, y Color) int {\n\treturn 0\n}")
	require.False(t, strings.Contains(code, "switch x := x.(type)"))
}

func TestGenerateNonComparableEqual(t *testing.T) {
	u := &Union{
		Package:   "p",
		Name:      "Blob",
		Container: "BlobBox",
		Derive:    Derive{Equal: true},
		Variants:  []Variant{{Name: "Bytes", Shape: Single, Fields: []Field{{"Value", "[]byte"}}}},
	}
	out, err := Generate(u)
	require.NoError(t, err)
	require.Contains(t, string(out), "reflect.DeepEqual(x.Value, y.Value)")
}

func TestGenerateRejectsInvalid(t *testing.T) {
	u := itemUnion()
	u.Variants = nil
	_, err := Generate(u)
	require.ErrorIs(t, err, ErrInvalid)
}

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

func TestIntrospectShape(t *testing.T) {
	res, err := IntrospectShape(ShapeOptions{
		Pattern:   "github.com/chazu/tagbox/internal/fixture",
		Type:      "itemShape",
		Container: "Container",
		Derive:    Derive{Equal: true, Compare: true},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Dir)

	want := itemUnion()
	want.Imports = map[string]string{}
	require.Equal(t, *want, res.Union)
}

func TestIntrospectShapeErrors(t *testing.T) {
	_, err := IntrospectShape(ShapeOptions{Pattern: "github.com/chazu/tagbox/internal/fixture", Type: "missingShape"})
	require.ErrorContains(t, err, "no type missingShape")

	_, err = IntrospectShape(ShapeOptions{Pattern: "github.com/chazu/tagbox/internal/fixture", Type: "Item"})
	require.ErrorContains(t, err, "not a struct")
}
