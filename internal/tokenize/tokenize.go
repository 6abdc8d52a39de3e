// Package tokenize splits free text into an ordered sequence of
// lower-case alphanumeric tokens. It deliberately does not stem, drop
// stop words, or group tokens into phrases or n-grams — see spec.md's
// Non-goals.
package tokenize

import "strings"

// Tokenize lower-cases s, replaces every rune outside [A-Za-z0-9] with a
// space, splits on runs of whitespace, and drops empty tokens. Token
// order and duplicates are preserved.
func Tokenize(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	fields := strings.Fields(b.String())
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = strings.ToLower(f)
	}
	return tokens
}
