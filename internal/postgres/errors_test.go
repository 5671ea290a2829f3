package postgres

import (
	"database/sql"
	"errors"
	"testing"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored", nil))

	err := WrapError(sql.ErrNoRows, "Subscriber not found", map[string]any{"subscriber_id": int64(4)})
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, "Subscriber not found", ierr.DisplayMessage(err))

	err = WrapError(&pq.Error{Code: "23505", Message: "duplicate key"}, "Order exists", nil)
	assert.True(t, ierr.IsAlreadyExists(err))

	err = WrapError(errors.New("connection refused"), "Failed to list orders", nil)
	assert.True(t, ierr.IsDatabase(err))
	assert.False(t, ierr.IsNotFound(err))
}
