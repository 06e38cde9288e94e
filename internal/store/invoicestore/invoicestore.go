// Package invoicestore provides read access to invoice records in PostgreSQL.
package invoicestore

import (
	"context"
	"database/sql"
	"errors"

	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/models"
)

const findByInvoiceIDQuery = `
SELECT invoice_id, name, status, amount, due_date
FROM invoices
WHERE UPPER(invoice_id) = UPPER($1)`

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.With(map[string]interface{}{"store": "invoice"}),
	}
}

// FindByInvoiceID looks up an invoice case-insensitively, returning nil when
// no invoice matches.
func (s *Store) FindByInvoiceID(ctx context.Context, invoiceID string) (*models.InvoiceRecord, error) {
	var (
		rec     models.InvoiceRecord
		dueDate sql.NullString
	)
	err := s.db.QueryRowContext(ctx, findByInvoiceIDQuery, invoiceID).Scan(
		&rec.InvoiceID,
		&rec.Name,
		&rec.Status,
		&rec.Amount,
		&dueDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("invoice lookup failed", map[string]interface{}{
			"invoiceId": invoiceID,
			"error":     err.Error(),
		})
		return nil, stderrors.NewInvoiceStoreError(err)
	}
	if dueDate.Valid {
		rec.DueDate = dueDate.String
	}
	return &rec, nil
}
