package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// WrapError marks a driver error with the matching ierr sentinel
func WrapError(err error, hint string, details map[string]any) error {
	if err == nil {
		return nil
	}

	b := ierr.WithError(err).WithHint(hint)
	if details != nil {
		b = b.WithReportableDetails(details)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return b.Mark(ierr.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return b.Mark(ierr.ErrAlreadyExists)
	}
	return b.Mark(ierr.ErrDatabase)
}
