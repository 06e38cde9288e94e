package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVendorID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		id    string
		found bool
	}{
		{name: "bare id", input: "V001", id: "V001", found: true},
		{name: "lowercase with trailing space", input: "v001 ", id: "V001", found: true},
		{name: "embedded in sentence", input: "my id is V123 thanks", id: "V123", found: true},
		{name: "too few digits", input: "V12", found: false},
		{name: "too many digits", input: "V1234", found: false},
		{name: "not a bounded token", input: "XV001", found: false},
		{name: "no id at all", input: "hello", found: false},
		{name: "empty", input: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, found := VendorID(tt.input)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestInvoiceID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *InvoiceMatch
	}{
		{
			name:     "valid five digits",
			input:    "Ven12345",
			expected: &InvoiceMatch{ID: "VEN12345", Valid: true},
		},
		{
			name:     "valid inside sentence",
			input:    "status of ven34562 please",
			expected: &InvoiceMatch{ID: "VEN34562", Valid: true},
		},
		{
			name:     "too short",
			input:    "Ven123",
			expected: &InvoiceMatch{ID: "VEN123", Valid: false, Reason: ReasonLength},
		},
		{
			name:     "too long",
			input:    "VEN123456",
			expected: &InvoiceMatch{ID: "VEN123456", Valid: false, Reason: ReasonLength},
		},
		{
			name:     "wrong prefix",
			input:    "Inv123",
			expected: &InvoiceMatch{ID: "INV123", Valid: false, Reason: ReasonFormat},
		},
		{
			name:     "no invoice shaped token",
			input:    "hello",
			expected: nil,
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InvoiceID(tt.input))
		})
	}
}
