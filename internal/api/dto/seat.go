package dto

import (
	"time"

	"github.com/flexprice/playerseats/internal/domain/audit"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// AdjustSeatsRequest asks to change the seat count of a subscriber.
// SubscriberID and Actor come from the route and the caller's token.
type AdjustSeatsRequest struct {
	SubscriberID int64       `json:"-"`
	NewSeats     int         `json:"new_seats" validate:"min=0"`
	Actor        types.Actor `json:"-"`
}

func (r *AdjustSeatsRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	return r.Actor.Type.Validate()
}

// AdjustmentOutcome reports how far a seat adjustment got
type AdjustmentOutcome struct {
	SubscriberID int64                     `json:"subscriber_id"`
	State        types.AdjustmentState     `json:"state"`
	Path         []types.AdjustmentState   `json:"path"`
	OldSeats     int                       `json:"old_seats"`
	NewSeats     int                       `json:"new_seats"`
	Proration    *ProrationResponse        `json:"proration,omitempty"`
	ErrorKind    types.AdjustmentErrorKind `json:"error_kind,omitempty"`
	Error        string                    `json:"error,omitempty"`

	PaymentMethod types.PaymentMethod `json:"payment_method,omitempty"`
	PaymentRef    string              `json:"payment_ref,omitempty"`
	PaymentURL    string              `json:"payment_url,omitempty"`
	CreditID      string              `json:"credit_id,omitempty"`
	// PaymentWarning is set when seats were updated but the invoice could not be issued
	PaymentWarning string `json:"payment_warning,omitempty"`
}

// NewAdjustmentOutcome starts an outcome in the requested state
func NewAdjustmentOutcome(subscriberID int64, newSeats int) *AdjustmentOutcome {
	return &AdjustmentOutcome{
		SubscriberID: subscriberID,
		State:        types.AdjustmentStateRequested,
		Path:         []types.AdjustmentState{types.AdjustmentStateRequested},
		NewSeats:     newSeats,
	}
}

// Transition moves the outcome to the next state and records it on the path
func (o *AdjustmentOutcome) Transition(next types.AdjustmentState) {
	o.State = next
	o.Path = append(o.Path, next)
}

// Succeeded reports whether the adjustment reached done
func (o *AdjustmentOutcome) Succeeded() bool {
	return o.State == types.AdjustmentStateDone
}

// SeatSummaryResponse is the seat state of a subscriber together with the level limits
type SeatSummaryResponse struct {
	SubscriberID        int64           `json:"subscriber_id"`
	LevelID             int64           `json:"level_id"`
	CurrentSeats        int             `json:"current_seats"`
	DefaultSeats        int             `json:"default_seats"`
	MaxSeats            int             `json:"max_seats"`
	ExtraSeats          int             `json:"extra_seats"`
	AllowExtra          bool            `json:"allow_extra"`
	PricePerSeatMonthly decimal.Decimal `json:"price_per_seat_monthly" swaggertype:"string"`
	ProrationEnabled    bool            `json:"proration_enabled"`
	NextRenewalAmount   decimal.Decimal `json:"next_renewal_amount" swaggertype:"string"`
	LastAdjustmentAt    *time.Time      `json:"last_adjustment_at,omitempty"`
	Version             int64           `json:"version"`
}

func NewSeatSummaryResponse(state *seat.State, policy *seatpolicy.SeatPolicy, maxSeatsCap int) *SeatSummaryResponse {
	return &SeatSummaryResponse{
		SubscriberID:        state.SubscriberID,
		LevelID:             policy.LevelID,
		CurrentSeats:        state.CurrentSeats,
		DefaultSeats:        policy.DefaultSeats,
		MaxSeats:            policy.EffectiveMax(maxSeatsCap),
		ExtraSeats:          state.ExtraSeats(policy),
		AllowExtra:          policy.AllowExtra,
		PricePerSeatMonthly: policy.PricePerSeatMonthly,
		ProrationEnabled:    policy.ProrationEnabled,
		NextRenewalAmount:   policy.RenewalAmount(state.CurrentSeats),
		LastAdjustmentAt:    state.LastAdjustmentAt,
		Version:             state.Version,
	}
}

// FeaturesResponse lists the features granted by the subscriber's level
type FeaturesResponse struct {
	SubscriberID int64    `json:"subscriber_id"`
	LevelID      int64    `json:"level_id"`
	Features     []string `json:"features"`
}

// ListSeatHistoryResponse is one page of the seat audit log, newest first
type ListSeatHistoryResponse = types.ListResponse[*audit.Entry]
