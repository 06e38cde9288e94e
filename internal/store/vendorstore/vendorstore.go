// Package vendorstore provides read access to vendor records in PostgreSQL.
package vendorstore

import (
	"context"
	"database/sql"
	"errors"

	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/models"
)

const findByVendorIDQuery = `
SELECT vendor_id, name, registration_status, performance_rating, profile_help
FROM vendors
WHERE vendor_id = $1`

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.With(map[string]interface{}{"store": "vendor"}),
	}
}

// FindByVendorID returns the vendor record, or nil when no vendor matches.
func (s *Store) FindByVendorID(ctx context.Context, vendorID string) (*models.VendorRecord, error) {
	var rec models.VendorRecord
	err := s.db.QueryRowContext(ctx, findByVendorIDQuery, vendorID).Scan(
		&rec.VendorID,
		&rec.Name,
		&rec.RegistrationStatus,
		&rec.PerformanceRating,
		&rec.ProfileHelp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("vendor lookup failed", map[string]interface{}{
			"vendorId": vendorID,
			"error":    err.Error(),
		})
		return nil, stderrors.NewVendorStoreError(err)
	}
	return &rec, nil
}
