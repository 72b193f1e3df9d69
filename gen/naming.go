package gen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// tupleFieldName names the i-th element of a tuple variant: F0, F1, ...
func tupleFieldName(i int) string {
	return "F" + strconv.Itoa(i)
}

// ordinalName is the exported constant holding a variant's discriminant.
// e.g., union "Item", variant "Number" → "ItemNumberOrdinal"
func ordinalName(u *Union, v Variant) string {
	return u.Name + v.Name + "Ordinal"
}

// variantsTypeName is the type implementing tagbox.Variants.
// e.g., "Item" → "ItemVariants"
func variantsTypeName(u *Union) string {
	return u.Name + "Variants"
}

// constructorName is the container constructor for one variant.
// e.g., container "Container", variant "Number" → "ContainerFromNumber"
func constructorName(u *Union, v Variant) string {
	return u.Container + "From" + v.Name
}

// generatedNames maps every exported package-level name Generate declares
// for u, other than the variant types, to what it names.
func generatedNames(u *Union) map[string]string {
	names := make(map[string]string)
	names[u.Name] = "union interface"
	names[u.Container] = "container"
	names[u.Container+"From"] = "constructor"
	names[variantsTypeName(u)] = "variants table"
	for _, v := range u.Variants {
		names[ordinalName(u, v)] = "ordinal constant"
		if v.Shape != Unit {
			names[constructorName(u, v)] = "constructor"
		}
	}
	return names
}

// markerMethod is the unexported method that closes the union interface.
// e.g., "Item" → "isItem"
func markerMethod(u *Union) string {
	return "is" + u.Name
}

// private derives an unexported package-level name from the union.
// e.g., "Item", "VariantCount" → "itemVariantCount"
func private(u *Union, suffix string) string {
	return lowerFirst(u.Name) + suffix
}

// paramName converts a field name to a constructor parameter name.
// e.g., "Value" → "value", "F0" → "f0", "Type" → "type_"
func paramName(field string) string {
	name := lowerFirst(field)
	if token.IsKeyword(name) || isPredeclared(name) {
		name += "_"
	}
	return name
}

func isPredeclared(name string) bool {
	switch name {
	case "any", "bool", "byte", "error", "string", "rune", "int", "uint",
		"len", "cap", "new", "make", "nil", "true", "false", "copy", "append":
		return true
	}
	return false
}

// lowerFirst lowercases the leading run of capitals, keeping the last one
// when it starts a new word.
// e.g., "Item" → "item", "HTTPRoute" → "httpRoute", "ID" → "id"
func lowerFirst(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == 1 || n == len(runes):
		return strings.ToLower(string(runes[:n])) + string(runes[n:])
	}
	// "HTTPRoute": keep the R of Route.
	return strings.ToLower(string(runes[:n-1])) + string(runes[n-1:])
}
