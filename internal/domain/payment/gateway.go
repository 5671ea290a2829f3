package payment

import (
	"context"
	"errors"
	"time"

	"github.com/flexprice/playerseats/internal/domain/seat"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
)

// Gateway is the external payment processor used while adjusting seats.
// Implementations mark failures with seat.ErrGatewayTimeout,
// seat.ErrGatewayRejected or seat.ErrNoPaymentMethod.
type Gateway interface {
	// ChargeNow collects the amount immediately from the stored card
	ChargeNow(ctx context.Context, req *Request) (*ChargeResult, error)
	// CreatePayableDocument issues an invoice for the amount
	CreatePayableDocument(ctx context.Context, req *Request) (*PayableDocument, error)
	// RecordCredit posts a credit note for the amount
	RecordCredit(ctx context.Context, req *Request) (*CreditResult, error)
}

// RecurringSeatUpdater is implemented by gateways that bill extra seats on a
// recurring subscription. The next renewal then charges the new count.
type RecurringSeatUpdater interface {
	UpdateRecurringSeats(ctx context.Context, req *RecurringSeatsRequest) error
}

// SubscriptionPeriodSource looks up when a recurring card subscription renews
type SubscriptionPeriodSource interface {
	// CurrentPeriodEnd returns the end of the running period or an ierr.ErrNotFound marked error
	CurrentPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error)
}

// ErrorKind classifies a gateway error. Deadline expiry is a timeout and
// anything the gateway did not classify itself counts as a rejection.
func ErrorKind(err error) types.AdjustmentErrorKind {
	if err == nil {
		return types.AdjustmentErrorNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.AdjustmentErrorGatewayTimeout
	}
	if kind := seat.ErrorKind(err); kind.IsPayment() {
		return kind
	}
	return types.AdjustmentErrorGatewayRejected
}

// WrapError marks a gateway error with its kind so callers can match on it
func WrapError(err error, hint string) error {
	if err == nil {
		return nil
	}
	kind := ErrorKind(err)
	return ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(map[string]any{
			"error_kind": kind,
		}).
		MarkAlso(ierr.ErrPayment).
		Mark(seat.SentinelFor(kind))
}
