package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
)

// createIfAbsent inserts a ledger entry and reports whether the insert won.
// A unique-constraint rejection on the entry's idempotency key means another
// writer (an earlier run, or a concurrent one) already recorded it; that is an
// expected outcome, not an error. Any other failure is wrapped as internal.
//
// This is the store-level primitive all ledger writers must route through:
// check-then-insert is racy, insert-then-check-the-rejection is not.
func createIfAbsent(db *gorm.DB, entry interface{}) (bool, error) {
	if err := db.Create(entry).Error; err != nil {
		if isDuplicateKeyError(err) {
			return false, nil
		}
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return true, nil
}

// isDuplicateKeyError checks if a GORM error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
