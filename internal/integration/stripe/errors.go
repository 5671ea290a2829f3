package stripe

import (
	"context"
	"errors"
	"net/http"

	"github.com/flexprice/playerseats/internal/domain/seat"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/stripe/stripe-go/v82"
)

// Stripe error codes meaning the customer has nothing to charge
var noPaymentMethodCodes = map[stripe.ErrorCode]bool{
	stripe.ErrorCode("missing"):                    true,
	stripe.ErrorCode("invoice_no_payment_method"):  true,
	stripe.ErrorCode("payment_method_unactivated"): true,
}

// sentinelFor classifies a Stripe error as one of the seat gateway sentinels
func sentinelFor(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return seat.ErrGatewayTimeout
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return seat.ErrGatewayRejected
	}

	switch {
	case noPaymentMethodCodes[stripeErr.Code]:
		return seat.ErrNoPaymentMethod
	case stripeErr.HTTPStatusCode == http.StatusRequestTimeout,
		stripeErr.HTTPStatusCode == http.StatusGatewayTimeout:
		return seat.ErrGatewayTimeout
	default:
		return seat.ErrGatewayRejected
	}
}

// classifyError wraps a Stripe error with the hint shown to the member and its sentinel
func classifyError(err error, hint string, details map[string]any) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		details["stripe_error_code"] = stripeErr.Code
		details["stripe_error_type"] = stripeErr.Type
		details["stripe_status"] = stripeErr.HTTPStatusCode
	}
	return ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(details).
		Mark(sentinelFor(err))
}
