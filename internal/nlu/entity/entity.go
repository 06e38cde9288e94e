// Package entity extracts vendor and invoice identifiers from raw text.
package entity

import (
	"regexp"
	"strings"
)

// Invalid-reason values for invoice matches.
const (
	ReasonLength = "length"
	ReasonFormat = "format"
)

// InvoiceMatch is the verdict for an invoice-ID-shaped token. A nil match
// means no such token was present at all, which is distinct from invalid:
// absence says "do not treat this as an invoice query".
type InvoiceMatch struct {
	ID     string
	Valid  bool
	Reason string
}

var (
	vendorRE       = regexp.MustCompile(`(?i)(?:^|\s)(v\d{3})(?:$|\s)`)
	invoiceVenRE   = regexp.MustCompile(`(?i)ven(\d+)`)
	letterDigitsRE = regexp.MustCompile(`(?i)([a-z]+)(\d+)`)
)

// VendorIDPattern exposes the bounded vendor token pattern for callers that
// scan stored text, such as transcript history searches.
func VendorIDPattern() *regexp.Regexp {
	return vendorRE
}

// VendorID pulls a bounded V### token out of raw text, returning the
// canonical uppercase form. The token must stand alone: "XV001" is not a
// vendor ID.
func VendorID(text string) (string, bool) {
	m := vendorRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// InvoiceID runs the two-stage invoice extraction. A "ven"-prefixed digit
// run canonicalizes to VEN+digits and is valid only with exactly 5 digits;
// any other letters+digits token is flagged as a format mismatch.
func InvoiceID(text string) *InvoiceMatch {
	if m := invoiceVenRE.FindStringSubmatch(text); m != nil {
		digits := m[1]
		fullID := "VEN" + digits
		if len(digits) != 5 {
			return &InvoiceMatch{ID: fullID, Valid: false, Reason: ReasonLength}
		}
		return &InvoiceMatch{ID: fullID, Valid: true}
	}

	if m := letterDigitsRE.FindStringSubmatch(text); m != nil {
		return &InvoiceMatch{
			ID:     strings.ToUpper(m[1]) + m[2],
			Valid:  false,
			Reason: ReasonFormat,
		}
	}

	return nil
}
