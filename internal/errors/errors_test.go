package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "validation",
			err:      NewError("too few seats").Mark(ErrValidation),
			expected: http.StatusBadRequest,
		},
		{
			name:     "already_exists_marked_as_database",
			err:      WithError(NewError("duplicate key").Mark(ErrAlreadyExists)).MarkAlso(ErrDatabase).Mark(ErrSystem),
			expected: http.StatusConflict,
		},
		{
			name:     "version_conflict_marked_as_database",
			err:      NewError("stale state").MarkAlso(ErrDatabase).Mark(ErrVersionConflict),
			expected: http.StatusConflict,
		},
		{
			name:     "payment_over_http_client",
			err:      NewError("gateway down").MarkAlso(ErrHTTPClient).Mark(ErrPayment),
			expected: http.StatusPaymentRequired,
		},
		{
			name:     "unmarked",
			err:      NewError("boom").Error(),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the result must not depend on iteration order
			for i := 0; i < 20; i++ {
				assert.Equal(t, tt.expected, HTTPStatusFromErr(tt.err))
			}
		})
	}
}
