// FILE: lixenwraith/envconfig/naming.go
package envconfig

import (
	"strings"
	"unicode"
)

// NamingFunc derives a lookup key from a field name and the schema prefix.
// It is called once per field on every resolution pass, so it may vary between passes.
type NamingFunc func(field, prefix string) string

// DefaultNaming joins prefix and field with an underscore and uppercases the result.
// An empty prefix is omitted: ("port", "app") -> "APP_PORT", ("port", "") -> "PORT".
func DefaultNaming(field, prefix string) string {
	name := field
	if prefix != "" {
		name = prefix + "_" + field
	}
	return strings.ToUpper(name)
}

// VerbatimNaming returns the field name untouched and ignores the prefix.
func VerbatimNaming(field, _ string) string {
	return field
}

// snakeCase converts a Go identifier to its snake_case form ("MaxConns" -> "max_conns",
// "HTTPAddr" -> "http_addr").
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
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
