// literal.go — String literal rendering for generated scripts.
package export

import (
	"strconv"
	"strings"
)

// EscapeJS escapes a string for embedding in JavaScript string literals.
func EscapeJS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\u2028", `\u2028`)
	s = strings.ReplaceAll(s, "\u2029", `\u2029`)
	return s
}

// jsString renders s as a single-quoted JavaScript literal.
func jsString(s string) string {
	return "'" + EscapeJS(s) + "'"
}

// countLiteral renders an expected element count as a number when it parses
// as one, else falls back to the quoted form.
func countLiteral(raw, quoted string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return strconv.Itoa(n)
	}
	return quoted
}
