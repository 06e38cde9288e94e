// Package normalizer canonicalizes free text for intent comparison.
package normalizer

import (
	"regexp"
	"strings"
)

var (
	nonAlpha   = regexp.MustCompile(`[^a-z\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	thanksRE   = regexp.MustCompile(`thx|thanx`)
	pleaseRE   = regexp.MustCompile(`pls|plz`)
	wantToRE   = regexp.MustCompile(`wana|wanna`)
	youRE      = regexp.MustCompile(`\bu\b`)
	supportRE  = regexp.MustCompile(`\b(?:suport|suppor|soport)\b`)
)

// Normalize canonicalizes raw text. Deterministic, total and idempotent.
// Character-class stripping runs before the token substitutions so that
// punctuation cannot break the substitution patterns.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = nonAlpha.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	s = collapseRepeats(s)
	s = thanksRE.ReplaceAllString(s, "thanks")
	s = pleaseRE.ReplaceAllString(s, "please")
	s = wantToRE.ReplaceAllString(s, "want to")
	s = youRE.ReplaceAllString(s, "you")
	s = supportRE.ReplaceAllString(s, "support")
	return strings.TrimSpace(s)
}

// collapseRepeats reduces any run of 3 or more identical characters to a
// single occurrence. Runs of 2 are kept, so "hellooo" becomes "hello".
// Done by hand since RE2 has no backreferences.
func collapseRepeats(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i >= 3 {
			b.WriteRune(runes[i])
		} else {
			for k := i; k < j; k++ {
				b.WriteRune(runes[i])
			}
		}
		i = j
	}
	return b.String()
}
