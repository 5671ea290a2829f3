package types

import (
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/samber/lo"
)

// ActorType is the role of whoever requested a seat change
type ActorType string

const (
	ActorTypeUser  ActorType = "user"
	ActorTypeAdmin ActorType = "admin"
)

var ActorTypeValues = []ActorType{
	ActorTypeUser,
	ActorTypeAdmin,
}

func (a ActorType) Validate() error {
	if !lo.Contains(ActorTypeValues, a) {
		return ierr.NewError("invalid actor type").
			WithHint("Actor type must be user or admin").
			WithReportableDetails(map[string]any{
				"allowed_values": ActorTypeValues,
				"provided_value": a,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (a ActorType) String() string {
	return string(a)
}

// Actor identifies who performed a seat change
type Actor struct {
	ID   string    `json:"id"`
	Type ActorType `json:"type"`
}

// AdjustmentState is a step of a seat adjustment
type AdjustmentState string

const (
	AdjustmentStateRequested      AdjustmentState = "requested"
	AdjustmentStateValidated      AdjustmentState = "validated"
	AdjustmentStatePriced         AdjustmentState = "priced"
	AdjustmentStatePaymentApplied AdjustmentState = "payment_applied"
	AdjustmentStateCreditRecorded AdjustmentState = "credit_recorded"
	AdjustmentStateNoOp           AdjustmentState = "no_op"
	AdjustmentStatePersisted      AdjustmentState = "persisted"
	AdjustmentStateNotified       AdjustmentState = "notified"
	AdjustmentStateDone           AdjustmentState = "done"
	AdjustmentStateRejected       AdjustmentState = "rejected"
	AdjustmentStateFailed         AdjustmentState = "failed"
)

// IsTerminal reports whether no transition leaves the state
func (s AdjustmentState) IsTerminal() bool {
	return s == AdjustmentStateDone || s == AdjustmentStateRejected || s == AdjustmentStateFailed
}

// AdjustmentErrorKind names why a seat adjustment did not complete
type AdjustmentErrorKind string

const (
	AdjustmentErrorNone AdjustmentErrorKind = ""

	// validation
	AdjustmentErrorBelowMinimum AdjustmentErrorKind = "below_minimum"
	AdjustmentErrorAboveMaximum AdjustmentErrorKind = "above_maximum"
	AdjustmentErrorNoChange     AdjustmentErrorKind = "no_change"
	AdjustmentErrorNoMembership AdjustmentErrorKind = "no_membership"

	// payment
	AdjustmentErrorGatewayTimeout  AdjustmentErrorKind = "gateway_timeout"
	AdjustmentErrorGatewayRejected AdjustmentErrorKind = "gateway_rejected"
	AdjustmentErrorNoPaymentMethod AdjustmentErrorKind = "no_payment_method"

	// storage
	AdjustmentErrorPersistence AdjustmentErrorKind = "persistence"
)

// IsValidation reports whether the kind comes from request validation
func (k AdjustmentErrorKind) IsValidation() bool {
	switch k {
	case AdjustmentErrorBelowMinimum, AdjustmentErrorAboveMaximum, AdjustmentErrorNoChange, AdjustmentErrorNoMembership:
		return true
	}
	return false
}

// IsPayment reports whether the kind comes from the payment gateway
func (k AdjustmentErrorKind) IsPayment() bool {
	switch k {
	case AdjustmentErrorGatewayTimeout, AdjustmentErrorGatewayRejected, AdjustmentErrorNoPaymentMethod:
		return true
	}
	return false
}
