package docmap

import (
	"strings"
	"unicode"
)

// Element naming strategies for convention profiles. Each maps a Go field
// name to its document element name.

// AsIsNaming keeps the field name unchanged.
func AsIsNaming(field string) string {
	return field
}

// LowerCaseNaming lowercases the whole field name: OrderID -> orderid.
func LowerCaseNaming(field string) string {
	return strings.ToLower(field)
}

// CamelCaseNaming lowercases the leading run of upper-case letters:
// Name -> name, OrderID -> orderID, ID -> id.
func CamelCaseNaming(field string) string {
	runes := []rune(field)
	for i := 0; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		// Stop before the last upper-case letter of an acronym prefix so
		// HTTPPort becomes httpPort, not httpport.
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// SnakeCaseNaming inserts underscores at word boundaries and lowercases:
// OrderID -> order_id, HTTPPort -> http_port.
func SnakeCaseNaming(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
