package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/dave/jennifer/jen"
)

// typeClass says what generated code may do with values of a field type.
type typeClass int

const (
	classOrdered    typeClass = iota // cmp.Compare works
	classBool                        // tagbox.CompareBool
	classNamed                       // user type: assumed comparable, ordered by its Compare method
	classComparable                  // == works, no order
	classOpaque                      // slices, maps, funcs: reflect.DeepEqual
)

var orderedBasics = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "string": true, "byte": true, "rune": true,
}

var otherBasics = map[string]bool{
	"bool": true, "complex64": true, "complex128": true, "error": true, "any": true,
}

// typeExpr is a parsed field type.
type typeExpr struct {
	src   string
	code  jen.Code
	class typeClass
	basic bool // predeclared type with no methods of its own
}

func (t typeExpr) ordering() bool {
	return t.class == classOrdered || t.class == classBool || t.class == classNamed
}

func (t typeExpr) comparable() bool {
	return t.class != classOpaque
}

// parseType parses a Go type expression. Package-qualified names are
// resolved through imports.
func parseType(src string, imports map[string]string) (typeExpr, error) {
	if src == "" {
		return typeExpr{}, fmt.Errorf("missing type")
	}
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return typeExpr{}, fmt.Errorf("type %q: %w", src, err)
	}
	t, err := convertType(expr, imports)
	if err != nil {
		return typeExpr{}, fmt.Errorf("type %q: %w", src, err)
	}
	t.src = src
	return t, nil
}

func convertType(expr ast.Expr, imports map[string]string) (typeExpr, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		switch {
		case orderedBasics[e.Name]:
			return typeExpr{code: jen.Id(e.Name), class: classOrdered, basic: true}, nil
		case e.Name == "bool":
			return typeExpr{code: jen.Id(e.Name), class: classBool, basic: true}, nil
		case otherBasics[e.Name]:
			return typeExpr{code: jen.Id(e.Name), class: classComparable, basic: e.Name != "error" && e.Name != "any"}, nil
		}
		return typeExpr{code: jen.Id(e.Name), class: classNamed}, nil

	case *ast.SelectorExpr:
		pkg, ok := e.X.(*ast.Ident)
		if !ok {
			return typeExpr{}, fmt.Errorf("unsupported qualified name")
		}
		path, ok := imports[pkg.Name]
		if !ok {
			return typeExpr{}, fmt.Errorf("package %s has no import path", pkg.Name)
		}
		return typeExpr{code: jen.Qual(path, e.Sel.Name), class: classNamed}, nil

	case *ast.StarExpr:
		elem, err := convertType(e.X, imports)
		if err != nil {
			return typeExpr{}, err
		}
		return typeExpr{code: jen.Op("*").Add(elem.code), class: classComparable}, nil

	case *ast.ArrayType:
		elem, err := convertType(e.Elt, imports)
		if err != nil {
			return typeExpr{}, err
		}
		if e.Len == nil {
			return typeExpr{code: jen.Index().Add(elem.code), class: classOpaque}, nil
		}
		lit, ok := e.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return typeExpr{}, fmt.Errorf("array length must be an integer literal")
		}
		n, err := strconv.Atoi(lit.Value)
		if err != nil {
			return typeExpr{}, fmt.Errorf("array length %s: %w", lit.Value, err)
		}
		class := classComparable
		if !elem.comparable() {
			class = classOpaque
		}
		return typeExpr{code: jen.Index(jen.Lit(n)).Add(elem.code), class: class, basic: elem.basic}, nil

	case *ast.MapType:
		key, err := convertType(e.Key, imports)
		if err != nil {
			return typeExpr{}, err
		}
		val, err := convertType(e.Value, imports)
		if err != nil {
			return typeExpr{}, err
		}
		return typeExpr{code: jen.Map(key.code).Add(val.code), class: classOpaque}, nil

	case *ast.ChanType:
		elem, err := convertType(e.Value, imports)
		if err != nil {
			return typeExpr{}, err
		}
		var code *jen.Statement
		switch e.Dir {
		case ast.SEND:
			code = jen.Chan().Op("<-").Add(elem.code)
		case ast.RECV:
			code = jen.Op("<-").Chan().Add(elem.code)
		default:
			code = jen.Chan().Add(elem.code)
		}
		return typeExpr{code: code, class: classComparable}, nil

	case *ast.InterfaceType:
		if e.Methods != nil && len(e.Methods.List) > 0 {
			return typeExpr{}, fmt.Errorf("only the empty interface is supported inline")
		}
		return typeExpr{code: jen.Interface(), class: classComparable}, nil

	case *ast.StructType:
		if e.Fields != nil && len(e.Fields.List) > 0 {
			return typeExpr{}, fmt.Errorf("only the empty struct is supported inline")
		}
		return typeExpr{code: jen.Struct(), class: classComparable, basic: true}, nil
	}
	return typeExpr{}, fmt.Errorf("unsupported type expression %T", expr)
}
