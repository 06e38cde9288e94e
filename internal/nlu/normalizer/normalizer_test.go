package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "HELLO There", expected: "hello there"},
		{name: "strips punctuation", input: "hello!!!", expected: "hello"},
		{name: "strips digits", input: "thanks 123", expected: "thanks"},
		{name: "collapses whitespace", input: "hello    there", expected: "hello there"},
		{name: "collapses repeated chars", input: "hellooo", expected: "hello"},
		{name: "keeps double letters", input: "good will", expected: "good will"},
		{name: "thx becomes thanks", input: "thx a lot", expected: "thanks a lot"},
		{name: "thanx becomes thanks", input: "thanx", expected: "thanks"},
		{name: "plz becomes please", input: "plz help", expected: "please help"},
		{name: "wanna becomes want to", input: "i wanna pay", expected: "i want to pay"},
		{name: "standalone u becomes you", input: "can u help", expected: "can you help"},
		{name: "u inside word untouched", input: "status update", expected: "status update"},
		{name: "suport misspelling fixed", input: "contact suport", expected: "contact support"},
		{name: "soport misspelling fixed", input: "soport team", expected: "support team"},
		{name: "trims edges", input: "  hi  ", expected: "hi"},
		{name: "punctuation stripped before substitution", input: "t.h.x", expected: "thanks"},
		{name: "empty input", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hellooo!!! how are u???",
		"thx, plz connect me to suport",
		"i wanna check my INVOICE Ven12345",
		"  lots   of   spaces  ",
		"plss and thxxx",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}
