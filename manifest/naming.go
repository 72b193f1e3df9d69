package manifest

import (
	"go/token"
	"strings"
	"unicode"
)

// ToPascalCase converts a string to PascalCase.
// "single-tuple" -> "SingleTuple", "unit" -> "Unit", "manyTuple" -> "ManyTuple"
func ToPascalCase(s string) string {
	var words []string
	current := ""
	for i, r := range s {
		if r == '-' || r == '_' {
			if current != "" {
				words = append(words, current)
				current = ""
			}
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(s[i-1])
			if prev >= 'a' && prev <= 'z' {
				words = append(words, current)
				current = ""
			}
		}
		current += string(r)
	}
	if current != "" {
		words = append(words, current)
	}

	var result string
	for _, w := range words {
		if w == "" {
			continue
		}
		result += strings.ToUpper(w[:1]) + w[1:]
	}
	return result
}

// ToSnakeCase converts a Go identifier to snake_case for file names.
// "Item" -> "item", "ShapeKind" -> "shape_kind", "HTTPRoute" -> "http_route"
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// reservedNames lists identifiers generated code declares for every union,
// plus the predeclared identifiers that would be shadowed by a variant type.
var reservedNames = map[string]bool{
	"Ordinal":    true,
	"Variants":   true,
	"Box":        true,
	"Value":      true,
	"any":        true,
	"bool":       true,
	"byte":       true,
	"comparable": true,
	"error":      true,
	"string":     true,
	"rune":       true,
	"int":        true,
	"uint":       true,
	"uintptr":    true,
	"nil":        true,
	"true":       true,
	"false":      true,
	"iota":       true,
}

// IsReservedName reports whether name cannot be used for a union or variant.
// Go keywords are reserved along with the names in reservedNames.
func IsReservedName(name string) bool {
	return token.IsKeyword(name) || reservedNames[name]
}
