// Package quote renders SQL identifiers and string literals: identifiers
// are always double-quoted (never conditionally, unlike the teacher's
// reserved-word table), embedded double quotes are doubled, and string
// literals use single quotes with single-quote escaping.
package quote

import "strings"

// Ident double-quotes a single identifier, doubling any embedded quote.
func Ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Qualified double-quotes a schema-qualified identifier: "schema"."name".
func Qualified(schema, name string) string {
	if schema == "" {
		return Ident(name)
	}
	return Ident(schema) + "." + Ident(name)
}

// Literal single-quotes a string literal, doubling any embedded quote.
func Literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// EnsureSemicolon appends a trailing semicolon to text if it doesn't already
// end with one (ignoring trailing whitespace): function/trigger/aggregate
// definitions are emitted verbatim with a trailing semicolon ensured.
func EnsureSemicolon(text string) string {
	trimmed := strings.TrimRight(text, " \t\n\r")
	if strings.HasSuffix(trimmed, ";") {
		return trimmed
	}
	return trimmed + ";"
}
