// internal/models/models.go
package models

import "time"

// Sender identifies who produced a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ConversationState is the explicit dialogue-flow position, persisted next to
// the transcript instead of being re-derived from reply wording.
type ConversationState string

const (
	StateAwaitingTopic              ConversationState = "awaiting_topic"
	StateAwaitingVendorDetailChoice ConversationState = "awaiting_vendor_detail_choice"
	StateAwaitingResolutionConfirm  ConversationState = "awaiting_resolution_confirm"
	StateAwaitingContinuationChoice ConversationState = "awaiting_continuation_choice"
)

// Message is one transcript entry.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// VendorRecord mirrors the vendors table.
type VendorRecord struct {
	VendorID           string `json:"vendorId"`
	Name               string `json:"name"`
	RegistrationStatus string `json:"registrationStatus"`
	PerformanceRating  string `json:"performanceRating"`
	ProfileHelp        string `json:"profileHelp"`
}

// InvoiceRecord mirrors the invoices table.
type InvoiceRecord struct {
	InvoiceID string  `json:"invoiceId"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"dueDate,omitempty"`
}

// FAQRecord is one entry of the FAQ question bank.
type FAQRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
