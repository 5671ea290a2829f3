package stripe

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/flexprice/playerseats/internal/domain/seat"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"
)

func TestSentinelFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "card_declined",
			err:      &stripe.Error{Code: stripe.ErrorCodeCardDeclined, HTTPStatusCode: http.StatusPaymentRequired},
			expected: seat.ErrGatewayRejected,
		},
		{
			name:     "authentication_required",
			err:      &stripe.Error{Code: stripe.ErrorCodeAuthenticationRequired, HTTPStatusCode: http.StatusPaymentRequired},
			expected: seat.ErrGatewayRejected,
		},
		{
			name:     "no_default_card",
			err:      &stripe.Error{Code: stripe.ErrorCode("missing"), HTTPStatusCode: http.StatusBadRequest},
			expected: seat.ErrNoPaymentMethod,
		},
		{
			name:     "gateway_timeout",
			err:      &stripe.Error{HTTPStatusCode: http.StatusGatewayTimeout},
			expected: seat.ErrGatewayTimeout,
		},
		{
			name:     "deadline_exceeded",
			err:      context.DeadlineExceeded,
			expected: seat.ErrGatewayTimeout,
		},
		{
			name:     "unknown_error",
			err:      errors.New("connection reset"),
			expected: seat.ErrGatewayRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sentinelFor(tt.err))
		})
	}
}

func TestClassifyErrorKeepsKindThroughWrapError(t *testing.T) {
	err := classifyError(
		&stripe.Error{Code: stripe.ErrorCodeCardDeclined, HTTPStatusCode: http.StatusPaymentRequired},
		"Your card could not be charged",
		map[string]any{"subscriber_id": int64(1)},
	)

	assert.Equal(t, types.AdjustmentErrorGatewayRejected, seat.ErrorKind(err))
	assert.Equal(t, "Your card could not be charged", ierr.DisplayMessage(err))

	wrapped := payment.WrapError(err, "Payment failed")
	assert.Equal(t, types.AdjustmentErrorGatewayRejected, seat.ErrorKind(wrapped))
	assert.True(t, ierr.IsPayment(wrapped))
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(2700), toCents(decimal.NewFromInt(27)))
	assert.Equal(t, int64(1234), toCents(decimal.RequireFromString("12.335")))
	assert.Equal(t, int64(5), toCents(decimal.RequireFromString("0.05")))
}

func TestDisabledClient(t *testing.T) {
	c := &Client{}
	assert.False(t, c.Enabled())

	_, err := c.GetStripeClient(context.Background())
	assert.True(t, ierr.IsNotFound(err))
	assert.False(t, c.HasCustomer(context.Background(), 1))
}
