// Package errors provides standardized error handling for the chatbot service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation errors (user-correctable, reported as corrective replies)
	ErrCodeInvoiceIDLength ErrorCode = "INVOICE_ID_LENGTH"
	ErrCodeInvoiceIDFormat ErrorCode = "INVOICE_ID_FORMAT"
	ErrCodeEmptyMessage    ErrorCode = "EMPTY_MESSAGE"
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"

	// Lookup misses (reported as not-found replies)
	ErrCodeVendorNotFound  ErrorCode = "VENDOR_NOT_FOUND"
	ErrCodeInvoiceNotFound ErrorCode = "INVOICE_NOT_FOUND"

	// Collaborator failures (caught at the router boundary)
	ErrCodeVendorStoreFailed     ErrorCode = "VENDOR_STORE_FAILED"
	ErrCodeInvoiceStoreFailed    ErrorCode = "INVOICE_STORE_FAILED"
	ErrCodeFAQStoreFailed        ErrorCode = "FAQ_STORE_FAILED"
	ErrCodeTranscriptStoreFailed ErrorCode = "TRANSCRIPT_STORE_FAILED"
	ErrCodeNotificationFailed    ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewEmptyMessageError creates a non-retryable input absence error.
func NewEmptyMessageError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyMessage,
		Message:   "Empty message received",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVendorNotFoundError creates a non-retryable vendor lookup miss.
func NewVendorNotFoundError(vendorID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVendorNotFound,
		Message:   "Vendor not found",
		Details:   fmt.Sprintf("vendorId: %s", vendorID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvoiceNotFoundError creates a non-retryable invoice lookup miss.
func NewInvoiceNotFoundError(invoiceID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvoiceNotFound,
		Message:   "Invoice not found",
		Details:   fmt.Sprintf("invoiceId: %s", invoiceID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVendorStoreError creates a retryable vendor store failure.
func NewVendorStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVendorStoreFailed,
		Message:   "Vendor store query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvoiceStoreError creates a retryable invoice store failure.
func NewInvoiceStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvoiceStoreFailed,
		Message:   "Invoice store query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFAQStoreError creates a retryable FAQ store failure.
func NewFAQStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFAQStoreFailed,
		Message:   "FAQ store query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTranscriptStoreError creates a retryable transcript store failure.
func NewTranscriptStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptStoreFailed,
		Message:   "Transcript store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationError creates a retryable notification delivery failure.
func NewNotificationError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// AsStandard normalizes any error to a StandardError.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCollaboratorFailure reports whether the error is a store/notification
// failure rather than a validation problem or lookup miss.
func IsCollaboratorFailure(err error) bool {
	switch AsStandard(err).Code {
	case ErrCodeVendorStoreFailed, ErrCodeInvoiceStoreFailed,
		ErrCodeFAQStoreFailed, ErrCodeTranscriptStoreFailed,
		ErrCodeNotificationFailed:
		return true
	}
	return false
}
