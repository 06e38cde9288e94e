// Package transfer detects escalation requests that the exact-match
// classifier misses.
package transfer

import (
	"regexp"
	"strings"

	"vendor-portal-chatbot/internal/nlu/fuzzy"
	"vendor-portal-chatbot/internal/nlu/lexicon"
	"vendor-portal-chatbot/internal/nlu/normalizer"
)

// DefaultThreshold is the fuzzy score above which a transfer phrase counts.
const DefaultThreshold = 0.65

// Patterns run against the normalized text, so they only need lowercase
// letters and single spaces.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:con[tn]ect|contac?t|tr[ae]nsfer|t[oa]lk|spea?k|reach)\s*(?:me|us|to|with)?\s*(?:a|an|the)?\s*(?:buyer|agent|team|suport|support|human|representative|call)`),
	regexp.MustCompile(`(?:get|need|want|request)\s*(?:in\s*)?(?:touch|contact)\s*(?:with)?\s*(?:agent|team|buyer)`),
	regexp.MustCompile(`(?:live\s*support|customer\s*service|real\s*person)`),
	regexp.MustCompile(`escalate\s*(?:to|request|issue)`),
	regexp.MustCompile(`(?:call\s*back|phone\s*assistance|spea?k\s*directly)`),
	regexp.MustCompile(`(?:on\s*phone|voice\s*chat|direct\s*conversation)`),
}

var basePhrases = []string{
	"contact support", "contact suport", "connect to call",
	"talk on phone", "speak with buyer", "reach support team",
	"get human assistance", "transfer to call", "connect directly",
	"voice support", "phone agent", "live call", "speak live",
	"connect team member", "contact team", "speak to agent", "connect me to buyer",
}

// Detector checks three independent escalation signals: regex patterns,
// per-token lexicon membership and a fuzzy phrase match.
type Detector struct {
	lexicon   lexicon.Set
	phrases   []string
	threshold float64
}

func NewDetector(transfers lexicon.Set, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	phrases := make([]string, len(basePhrases))
	for i, p := range basePhrases {
		phrases[i] = normalizer.Normalize(p)
	}
	return &Detector{
		lexicon:   transfers,
		phrases:   phrases,
		threshold: threshold,
	}
}

// Detect reports whether the utterance asks for a human. Total: every signal
// runs on in-memory data, so there is no failure path to swallow.
func (d *Detector) Detect(utterance string) bool {
	normalized := normalizer.Normalize(utterance)
	if normalized == "" {
		return false
	}

	for _, p := range patterns {
		if p.MatchString(normalized) {
			return true
		}
	}

	for _, token := range strings.Fields(normalized) {
		if d.lexicon.Has(token) {
			return true
		}
	}

	return fuzzy.BestMatch(normalized, d.phrases).Score > d.threshold
}
