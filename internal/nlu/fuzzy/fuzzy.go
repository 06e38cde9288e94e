// Package fuzzy scores string similarity with a Dice coefficient over
// character bigrams, the metric behind both the FAQ lookup and the
// transfer-phrase fallback.
package fuzzy

import "strings"

// Similarity returns the Dice coefficient of the two strings' character
// bigram multisets, in [0, 1]. Whitespace is ignored entirely.
func Similarity(a, b string) float64 {
	a = stripSpaces(a)
	b = stripSpaces(b)

	if a == b {
		if len(a) == 0 {
			return 0
		}
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	intersection := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := string(rb[i : i+2])
		if bigrams[bg] > 0 {
			bigrams[bg]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(ra)+len(rb)-2)
}

// Match is the best-scoring reference for a query.
type Match struct {
	Index int
	Ref   string
	Score float64
}

// BestMatch scores the query against every reference and returns the best
// one. Ties break to the earliest reference, keeping results deterministic.
// An empty reference list yields Index -1.
func BestMatch(query string, refs []string) Match {
	best := Match{Index: -1}
	for i, ref := range refs {
		score := Similarity(query, ref)
		if score > best.Score || best.Index == -1 {
			best = Match{Index: i, Ref: ref, Score: score}
		}
	}
	return best
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
