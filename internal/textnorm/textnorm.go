// Package textnorm holds the text normalization shared by answer scoring
// and duplicate detection. Every comparison in those packages runs over
// the output of Normalize, so both sides of a comparison must use it.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics, maps everything outside
// [a-z0-9 ] to a space and collapses whitespace runs.
func Normalize(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(decomposed))
	space := true // leading whitespace is dropped
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark stripped
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			space = false
			b.WriteRune(r)
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokenize splits the normalized form of s into words.
func Tokenize(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// TokenSet returns the set of distinct tokens in s.
func TokenSet(s string) map[string]struct{} {
	toks := Tokenize(s)
	if len(toks) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard is |a∩b| / |a∪b|. Both sets empty yields 0; callers that want
// the "both empty means identical" convention check that case first.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
