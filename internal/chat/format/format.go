// Package format renders data records into display text. Purely
// presentational; outputs are bit-stable for golden tests.
package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"vendor-portal-chatbot/internal/models"
)

// Vendor detail selections, matched against normalized utterances.
const (
	DetailRegistrationStatus = "registration status"
	DetailPerformanceRating  = "performance rating"
	DetailProfileDetails     = "profile details"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// Invoice renders the fixed-width invoice record. Amount carries Indian
// digit grouping (12,345 / 1,00,000).
func Invoice(inv models.InvoiceRecord) string {
	amount := inr.Sprintf("₹%v", number.Decimal(inv.Amount))
	dueDate := inv.DueDate
	if dueDate == "" {
		dueDate = "N/A"
	}

	return fmt.Sprintf(`
📄 Invoice Details: %s
---------------------------------------------
* ID        : %-15s
* Name      : %-15s
* Status    : %-15s
* Amount    : %-15s
* Due Date  : %-15s
---------------------------------------------`,
		inv.InvoiceID, inv.InvoiceID, inv.Name, inv.Status, amount, dueDate)
}

// VendorDetail renders one vendor attribute with its fallback text.
func VendorDetail(detail string, vendor models.VendorRecord) string {
	switch detail {
	case DetailRegistrationStatus:
		status := vendor.RegistrationStatus
		if status == "" {
			status = "Not specified"
		}
		return fmt.Sprintf("📋 Registration Status: %s", status)
	case DetailPerformanceRating:
		rating := vendor.PerformanceRating
		if rating == "" {
			rating = "Not rated"
		}
		return fmt.Sprintf("⭐ Performance Rating: %s", rating)
	case DetailProfileDetails:
		help := vendor.ProfileHelp
		if help == "" {
			help = "Visit portal.orane.in/profile"
		}
		return fmt.Sprintf("👤 Profile Assistance: %s", help)
	}
	return "❌ Invalid vendor detail request"
}
