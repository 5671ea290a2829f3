package seat

import (
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
)

// Error codes of rejected or failed seat adjustments
const (
	ErrCodeBelowMinimum    = "SEATS_BELOW_MINIMUM"
	ErrCodeAboveMaximum    = "SEATS_ABOVE_MAXIMUM"
	ErrCodeNoChange        = "SEATS_NO_CHANGE"
	ErrCodeNoMembership    = "SEATS_NO_MEMBERSHIP"
	ErrCodeGatewayTimeout  = "SEATS_GATEWAY_TIMEOUT"
	ErrCodeGatewayRejected = "SEATS_GATEWAY_REJECTED"
	ErrCodeNoPaymentMethod = "SEATS_NO_PAYMENT_METHOD"
	ErrCodePersistence     = "SEATS_PERSISTENCE_FAILED"
)

var (
	ErrBelowMinimum    = ierr.New(ErrCodeBelowMinimum, "seat count is below the included seats")
	ErrAboveMaximum    = ierr.New(ErrCodeAboveMaximum, "seat count is above the maximum for the level")
	ErrNoChange        = ierr.New(ErrCodeNoChange, "seat count is unchanged")
	ErrNoMembership    = ierr.New(ErrCodeNoMembership, "subscriber has no active membership")
	ErrGatewayTimeout  = ierr.New(ErrCodeGatewayTimeout, "payment gateway timed out")
	ErrGatewayRejected = ierr.New(ErrCodeGatewayRejected, "payment gateway rejected the charge")
	ErrNoPaymentMethod = ierr.New(ErrCodeNoPaymentMethod, "no usable payment method")
	ErrPersistence     = ierr.New(ErrCodePersistence, "seat change could not be saved")
)

var kindsBySentinel = []struct {
	sentinel error
	kind     types.AdjustmentErrorKind
}{
	{ErrBelowMinimum, types.AdjustmentErrorBelowMinimum},
	{ErrAboveMaximum, types.AdjustmentErrorAboveMaximum},
	{ErrNoChange, types.AdjustmentErrorNoChange},
	{ErrNoMembership, types.AdjustmentErrorNoMembership},
	{ErrGatewayTimeout, types.AdjustmentErrorGatewayTimeout},
	{ErrGatewayRejected, types.AdjustmentErrorGatewayRejected},
	{ErrNoPaymentMethod, types.AdjustmentErrorNoPaymentMethod},
	{ErrPersistence, types.AdjustmentErrorPersistence},
}

// ErrorKind maps an error chain to the adjustment error kind it carries.
// Errors without a seat sentinel map to AdjustmentErrorNone.
func ErrorKind(err error) types.AdjustmentErrorKind {
	if err == nil {
		return types.AdjustmentErrorNone
	}
	for _, k := range kindsBySentinel {
		if ierr.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return types.AdjustmentErrorNone
}

// SentinelFor returns the seat sentinel of an error kind
func SentinelFor(kind types.AdjustmentErrorKind) error {
	for _, k := range kindsBySentinel {
		if k.kind == kind {
			return k.sentinel
		}
	}
	return nil
}
