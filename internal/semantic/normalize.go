// Package semantic implements the bounded semantic safety net: deterministic
// text normalization, a fixed hash-based vectorizer, a content-addressed
// embedding cache, and the capped boost (or sidecar evidence) layer.
package semantic

import (
	"strings"
	"unicode"
)

// NormalizationVersion tags the text normalization algorithm. It is part of
// every cache key so cached vectors invalidate cleanly when normalization
// changes.
const NormalizationVersion = "v1"

// NormalizeText lowercases, extracts alphanumeric tokens, and joins them with
// single spaces. Deterministic: the same input always produces the same
// output, byte for byte.
func NormalizeText(s string) string {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(tokens, " ")
}
