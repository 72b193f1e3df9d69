package gen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/tliron/commonlog"
)

const (
	tagboxPath = "github.com/chazu/tagbox"
	codecPath  = "github.com/chazu/tagbox/codec"
	cborPath   = "github.com/fxamacker/cbor/v2"
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("tagbox.gen")
}

// Generate renders the Go source for u. The output is gofmt'ed.
func Generate(u *Union) ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	g := &emitter{u: u, types: make(map[string][]typeExpr)}
	for _, v := range u.Variants {
		for _, f := range v.Fields {
			t, err := parseType(f.Type, u.Imports)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalid, v.Name, f.Name, err)
			}
			g.types[v.Name] = append(g.types[v.Name], t)
		}
	}

	f := jen.NewFile(u.Package)
	f.HeaderComment("Code generated by tagboxgen. DO NOT EDIT.")
	f.ImportName(tagboxPath, "tagbox")
	f.ImportName(codecPath, "codec")
	f.ImportName(cborPath, "cbor")

	g.ordinals(f)
	g.unionType(f)
	g.variantTypes(f)
	g.variantsTable(f)
	g.container(f)
	g.payloadDecoder(f)
	if u.Derive.Equal {
		g.equalFunc(f)
	}
	if u.Derive.Compare {
		g.compareFunc(f)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("gen: rendering %s: %w", u.Name, err)
	}
	logger().Debugf("generated %s: %d variants, %d bytes", u.Name, len(u.Variants), buf.Len())
	return buf.Bytes(), nil
}

type emitter struct {
	u     *Union
	types map[string][]typeExpr // variant name -> field types
}

func (g *emitter) discriminant() *jen.Statement {
	return jen.Qual(tagboxPath, "Discriminant")
}

func (g *emitter) box() *jen.Statement {
	return jen.Qual(tagboxPath, "Box").Types(jen.Id(g.u.Name))
}

func (g *emitter) variantsValue() *jen.Statement {
	return jen.Id(variantsTypeName(g.u)).Values()
}

// hasFields reports whether any variant carries a payload.
func (g *emitter) hasFields() bool {
	for _, v := range g.u.Variants {
		if len(v.Fields) > 0 {
			return true
		}
	}
	return false
}

// --- ordinals ---

func (g *emitter) ordinals(f *jen.File) {
	u := g.u
	defs := make([]jen.Code, len(u.Variants))
	names := make([]jen.Code, len(u.Variants))
	for i, v := range u.Variants {
		if i == 0 {
			defs[i] = jen.Id(ordinalName(u, v)).Add(g.discriminant()).Op("=").Iota()
		} else {
			defs[i] = jen.Id(ordinalName(u, v))
		}
		names[i] = jen.Lit(v.Name)
	}

	f.Commentf("%s ordinals. A %s stores the ordinal of its value as the box discriminant.", u.Name, u.Container)
	f.Const().Defs(defs...)
	f.Line()
	f.Const().Id(private(u, "VariantCount")).Op("=").Lit(len(u.Variants))
	f.Line()
	f.Var().Id(private(u, "VariantNames")).Op("=").Index(jen.Id(private(u, "VariantCount"))).String().Values(names...)
	f.Line()
}

// --- union interface and variant structs ---

func (g *emitter) unionType(f *jen.File) {
	u := g.u
	names := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		names[i] = v.Name
	}
	f.Commentf("%s is one of %s.", u.Name, strings.Join(names, ", "))
	f.Type().Id(u.Name).Interface(
		jen.Id("Ordinal").Params().Add(g.discriminant()),
		jen.Id(markerMethod(u)).Params(),
	)
	f.Line()
}

func (g *emitter) variantTypes(f *jen.File) {
	u := g.u
	for _, v := range u.Variants {
		fields := make([]jen.Code, len(v.Fields))
		for i, fld := range v.Fields {
			fields[i] = jen.Id(fld.Name).Add(g.types[v.Name][i].code)
		}
		f.Type().Id(v.Name).Struct(fields...)
		f.Line()
		f.Func().Params(jen.Id(v.Name)).Id("Ordinal").Params().Add(g.discriminant()).Block(
			jen.Return(jen.Id(ordinalName(u, v))),
		)
		f.Func().Params(jen.Id(v.Name)).Id(markerMethod(u)).Params().Block()
		f.Line()
	}
}

// --- tagbox.Variants implementation ---

func (g *emitter) variantsTable(f *jen.File) {
	u := g.u
	vt := variantsTypeName(u)
	recv := jen.Id("vs").Id(vt)

	f.Commentf("%s implements tagbox.Variants for %s. The zero value is ready to use.", vt, u.Name)
	f.Type().Id(vt).Struct()
	f.Line()
	f.Var().Id("_").Qual(tagboxPath, "Variants").Types(jen.Id(u.Name)).Op("=").Id(vt).Values()
	f.Line()

	f.Func().Params(jen.Id(vt)).Id("Name").Params().String().Block(jen.Return(jen.Lit(u.Name)))
	f.Func().Params(jen.Id(vt)).Id("Len").Params().Int().Block(jen.Return(jen.Id(private(u, "VariantCount"))))
	f.Line()

	// Encode
	var encode []jen.Code
	for _, v := range u.Variants {
		encode = append(encode, jen.Case(jen.Id(v.Name)).Block(
			jen.Return(jen.Qual(tagboxPath, "New").Types(jen.Id(u.Name)).Call(jen.Id("v"), jen.Id(ordinalName(u, v)))),
		))
	}
	f.Comment("Encode moves v into a new box tagged with its ordinal.")
	f.Func().Params(jen.Id(vt)).Id("Encode").Params(jen.Id("v").Id(u.Name)).Add(g.box()).Block(
		jen.Switch(jen.Id("v").Op(":=").Id("v").Assert(jen.Type())).Block(encode...),
		jen.Panic(jen.Qual(tagboxPath, "UnknownVariant").Call(jen.Lit(u.Name), jen.Id("v"))),
	)
	f.Line()

	// Decode and View dispatch on the same ordinals.
	exhausted := jen.Default().Block(jen.Panic(jen.Qual(tagboxPath, "Exhausted").Call(
		jen.Id("vs").Dot("Name").Call(), jen.Id("vs").Dot("Len").Call(), jen.Id("d"),
	)))
	dispatch := func(body func(v Variant) jen.Code) *jen.Statement {
		var cases []jen.Code
		for _, v := range u.Variants {
			cases = append(cases, jen.Case(jen.Id(ordinalName(u, v))).Block(body(v)))
		}
		cases = append(cases, exhausted)
		return jen.Switch(jen.Id("d").Op(":=").Id("b").Dot("Discriminant").Call(), jen.Id("d")).Block(cases...)
	}

	f.Comment("Decode consumes b and returns its value.")
	f.Func().Params(recv).Id("Decode").Params(jen.Id("b").Add(g.box())).Id(u.Name).Block(
		dispatch(func(v Variant) jen.Code {
			return jen.Return(jen.Qual(tagboxPath, "IntoInner").Types(jen.Id(v.Name)).Call(jen.Id("b")))
		}),
	)
	f.Line()

	f.Comment("View passes b's value to fn without consuming b. fn must not keep it.")
	f.Func().Params(jen.Id("vs").Id(vt)).Id("View").Params(
		jen.Id("b").Add(g.box()),
		jen.Id("fn").Func().Params(jen.Id(u.Name)),
	).Block(
		dispatch(func(v Variant) jen.Code {
			return jen.Id("fn").Call(jen.Qual(tagboxPath, "Read").Types(jen.Id(v.Name)).Call(jen.Id("b")))
		}),
	)
	f.Line()

	// Drop
	var drops []jen.Code
	for _, v := range u.Variants {
		var stmts []jen.Code
		for i, fld := range v.Fields {
			if g.types[v.Name][i].basic {
				continue
			}
			stmts = append(stmts, jen.Qual(tagboxPath, "Drop").Call(jen.Id("v").Dot(fld.Name)))
		}
		if len(stmts) > 0 {
			drops = append(drops, jen.Case(jen.Id(v.Name)).Block(stmts...))
		}
	}
	f.Comment("Drop runs the cleanup of every field of v that has one.")
	if len(drops) == 0 {
		f.Func().Params(jen.Id(vt)).Id("Drop").Params(jen.Id(u.Name)).Block()
	} else {
		f.Func().Params(jen.Id(vt)).Id("Drop").Params(jen.Id("v").Id(u.Name)).Block(
			jen.Switch(jen.Id("v").Op(":=").Id("v").Assert(jen.Type())).Block(drops...),
		)
	}
	f.Line()
}

// --- container ---

func (g *emitter) container(f *jen.File) {
	u := g.u
	c := u.Container
	recv := jen.Id("c").Op("*").Id(c)

	f.Commentf("%s holds one %s in a single word. The zero value is empty.", c, u.Name)
	f.Commentf("A %s owns its value and must be consumed once, by IntoInner or Drop.", c)
	f.Type().Id(c).Struct(jen.Id("value").Add(g.box()))
	f.Line()
	f.Var().Id("_").Qual(tagboxPath, "Container").Types(jen.Id(u.Name)).Op("=").
		Parens(jen.Op("*").Id(c)).Call(jen.Nil())
	f.Line()

	f.Commentf("%sFrom boxes v.", c)
	f.Func().Id(c + "From").Params(jen.Id("v").Id(u.Name)).Id(c).Block(
		jen.Return(jen.Id(c).Values(jen.Dict{
			jen.Id("value"): g.variantsValue().Dot("Encode").Call(jen.Id("v")),
		})),
	)
	f.Line()

	for _, v := range u.Variants {
		if v.Shape == Unit {
			continue
		}
		params := make([]jen.Code, len(v.Fields))
		dict := jen.Dict{}
		for i, fld := range v.Fields {
			p := paramName(fld.Name)
			params[i] = jen.Id(p).Add(g.types[v.Name][i].code)
			dict[jen.Id(fld.Name)] = jen.Id(p)
		}
		f.Commentf("%s boxes a %s.", constructorName(u, v), v.Name)
		f.Func().Id(constructorName(u, v)).Params(params...).Id(c).Block(
			jen.Return(jen.Id(c + "From").Call(jen.Id(v.Name).Values(dict))),
		)
		f.Line()
	}

	f.Comment("IntoInner consumes c and returns its value.")
	f.Func().Params(recv).Id("IntoInner").Params().Id(u.Name).Block(
		jen.Return(g.variantsValue().Dot("Decode").Call(
			jen.Qual(tagboxPath, "Take").Call(jen.Op("&").Id("c").Dot("value")),
		)),
	)
	f.Line()

	f.Comment("View passes c's value to fn without consuming c. fn must not keep it.")
	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("View").Params(jen.Id("fn").Func().Params(jen.Id(u.Name))).Block(
		g.variantsValue().Dot("View").Call(jen.Id("c").Dot("value"), jen.Id("fn")),
	)
	f.Line()

	f.Comment("Drop consumes c and runs the cleanup of its value.")
	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("Drop").Params().Block(
		jen.Var().Id("vs").Id(variantsTypeName(u)),
		jen.Id("vs").Dot("Drop").Call(jen.Id("vs").Dot("Decode").Call(
			jen.Qual(tagboxPath, "Take").Call(jen.Op("&").Id("c").Dot("value")),
		)),
	)
	f.Line()

	f.Comment("Discriminant returns the ordinal of c's value.")
	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("Discriminant").Params().Add(g.discriminant()).Block(
		jen.Return(jen.Id("c").Dot("value").Dot("Discriminant").Call()),
	)
	f.Line()

	f.Comment("IsZero reports whether c is empty or consumed.")
	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("IsZero").Params().Bool().Block(
		jen.Return(jen.Id("c").Dot("value").Dot("IsZero").Call()),
	)
	f.Line()

	f.Comment("Clone returns a new container holding a copy of c's value.")
	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("Clone").Params().Id(c).Block(
		jen.Return(jen.Id(c).Values(jen.Dict{
			jen.Id("value"): jen.Qual(tagboxPath, "Clone").Types(jen.Id(u.Name)).Call(
				g.variantsValue(), jen.Id("c").Dot("value"), jen.Nil(),
			),
		})),
	)
	f.Line()

	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("String").Params().String().Block(
		jen.If(jen.Id("c").Dot("value").Dot("IsZero").Call()).Block(
			jen.Return(jen.Lit(c+"(empty)")),
		),
		jen.Var().Id("s").String(),
		g.variantsValue().Dot("View").Call(jen.Id("c").Dot("value"), jen.Func().Params(jen.Id("v").Id(u.Name)).Block(
			jen.Id("s").Op("=").Id(private(u, "VariantNames")).Index(jen.Id("v").Dot("Ordinal").Call()).
				Op("+").Qual("fmt", "Sprintf").Call(jen.Lit("%+v"), jen.Id("v")),
		)),
		jen.Return(jen.Id("s")),
	)
	f.Line()

	if u.Derive.Equal {
		f.Comment("Equal reports whether c and o hold the same variant with equal fields.")
		f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("Equal").Params(jen.Id("o").Op("*").Id(c)).Bool().Block(
			jen.Return(jen.Qual(tagboxPath, "Equal").Types(jen.Id(u.Name)).Call(
				g.variantsValue(), jen.Id("c").Dot("value"), jen.Id("o").Dot("value"), jen.Id("equal" + u.Name),
			)),
		)
		f.Line()
	}
	if u.Derive.Compare {
		f.Comment("Compare orders by ordinal, then by fields in declaration order.")
		f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("Compare").Params(jen.Id("o").Op("*").Id(c)).Int().Block(
			jen.Return(jen.Qual(tagboxPath, "Compare").Types(jen.Id(u.Name)).Call(
				g.variantsValue(), jen.Id("c").Dot("value"), jen.Id("o").Dot("value"), jen.Id("compare" + u.Name),
			)),
		)
		f.Line()
	}

	f.Comment("MarshalCBOR encodes c's value without consuming c.")
	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("MarshalCBOR").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Return(jen.Qual(codecPath, "MarshalBox").Types(jen.Id(u.Name)).Call(g.variantsValue(), jen.Id("c").Dot("value"))),
	)
	f.Line()

	f.Comment("UnmarshalCBOR replaces c's value, dropping the old one.")
	f.Func().Params(jen.Id("c").Op("*").Id(c)).Id("UnmarshalCBOR").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.List(jen.Id("b"), jen.Err()).Op(":=").Qual(codecPath, "UnmarshalBox").Types(jen.Id(u.Name)).Call(
			g.variantsValue(), jen.Id("data"), jen.Id("decode"+u.Name+"Payload"),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.If(jen.Op("!").Id("c").Dot("value").Dot("IsZero").Call()).Block(
			jen.Id("c").Dot("Drop").Call(),
		),
		jen.Id("c").Dot("value").Op("=").Id("b"),
		jen.Return(jen.Nil()),
	)
	f.Line()
}

func (g *emitter) payloadDecoder(f *jen.File) {
	u := g.u
	var cases []jen.Code
	for _, v := range u.Variants {
		cases = append(cases, jen.Case(jen.Id(ordinalName(u, v))).Block(
			jen.Var().Id("v").Id(v.Name),
			jen.Err().Op(":=").Qual(codecPath, "DecodePayload").Call(jen.Id("raw"), jen.Op("&").Id("v")),
			jen.Return(jen.Id("v"), jen.Err()),
		))
	}
	f.Func().Id("decode"+u.Name+"Payload").Params(
		jen.Id("ordinal").Add(g.discriminant()),
		jen.Id("raw").Qual(cborPath, "RawMessage"),
	).Params(jen.Id(u.Name), jen.Error()).Block(
		jen.Switch(jen.Id("ordinal")).Block(cases...),
		jen.Return(jen.Nil(), jen.Qual(codecPath, "UnknownOrdinal").Call(jen.Lit(u.Name), jen.Id("ordinal"))),
	)
	f.Line()
}

// --- derives ---

// fieldSwitch emits a type switch over x with one case per variant that has
// fields; body gets the variant and builds the case from x.F and y.F.
func (g *emitter) fieldSwitch(body func(v Variant) []jen.Code, units jen.Code) jen.Code {
	var cases []jen.Code
	for _, v := range g.u.Variants {
		if len(v.Fields) == 0 {
			if units != nil {
				cases = append(cases, jen.Case(jen.Id(v.Name)).Block(units))
			}
			continue
		}
		stmts := append([]jen.Code{
			jen.Id("y").Op(":=").Id("y").Assert(jen.Id(v.Name)),
		}, body(v)...)
		cases = append(cases, jen.Case(jen.Id(v.Name)).Block(stmts...))
	}
	return jen.Switch(jen.Id("x").Op(":=").Id("x").Assert(jen.Type())).Block(cases...)
}

func (g *emitter) equalFunc(f *jen.File) {
	u := g.u
	sig := jen.Func().Id("equal" + u.Name).Params(jen.List(jen.Id("x"), jen.Id("y")).Id(u.Name)).Bool()

	if !g.hasFields() {
		// Discriminants already matched.
		f.Add(sig.Block(jen.Return(jen.True())))
		f.Line()
		return
	}

	body := func(v Variant) []jen.Code {
		var expr *jen.Statement
		for i, fld := range v.Fields {
			var term *jen.Statement
			if g.types[v.Name][i].comparable() {
				term = jen.Id("x").Dot(fld.Name).Op("==").Id("y").Dot(fld.Name)
			} else {
				term = jen.Qual("reflect", "DeepEqual").Call(jen.Id("x").Dot(fld.Name), jen.Id("y").Dot(fld.Name))
			}
			if expr == nil {
				expr = term
			} else {
				expr = expr.Op("&&").Add(term)
			}
		}
		return []jen.Code{jen.Return(expr)}
	}
	f.Add(sig.Block(
		g.fieldSwitch(body, jen.Return(jen.True())),
		jen.Return(jen.False()),
	))
	f.Line()
}

func (g *emitter) compareFunc(f *jen.File) {
	u := g.u
	sig := jen.Func().Id("compare" + u.Name).Params(jen.List(jen.Id("x"), jen.Id("y")).Id(u.Name)).Int()

	if !g.hasFields() {
		f.Add(sig.Block(jen.Return(jen.Lit(0))))
		f.Line()
		return
	}

	cmpField := func(t typeExpr, name string) *jen.Statement {
		x, y := jen.Id("x").Dot(name), jen.Id("y").Dot(name)
		switch t.class {
		case classOrdered:
			return jen.Qual("cmp", "Compare").Call(x, y)
		case classBool:
			return jen.Qual(tagboxPath, "CompareBool").Call(x, y)
		default:
			return x.Dot("Compare").Call(y)
		}
	}
	body := func(v Variant) []jen.Code {
		var stmts []jen.Code
		last := len(v.Fields) - 1
		for i, fld := range v.Fields {
			c := cmpField(g.types[v.Name][i], fld.Name)
			if i == last {
				stmts = append(stmts, jen.Return(c))
				break
			}
			stmts = append(stmts, jen.If(jen.Id("c").Op(":=").Add(c), jen.Id("c").Op("!=").Lit(0)).Block(
				jen.Return(jen.Id("c")),
			))
		}
		return stmts
	}
	f.Add(sig.Block(
		g.fieldSwitch(body, nil),
		jen.Return(jen.Lit(0)),
	))
	f.Line()
}
