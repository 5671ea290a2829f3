package proration

import (
	"time"

	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// BillingCycle is the current billing period of a subscriber as far as proration is concerned.
// PeriodLengthDays is the denominator of the proration fraction.
type BillingCycle struct {
	PeriodEndAt      time.Time
	PeriodLengthDays int
}

// NewBillingCycle builds a cycle, falling back to the default period length
func NewBillingCycle(periodEndAt time.Time, periodLengthDays int) BillingCycle {
	if periodLengthDays <= 0 {
		periodLengthDays = types.DefaultPeriodLengthDays
	}
	return BillingCycle{
		PeriodEndAt:      periodEndAt,
		PeriodLengthDays: periodLengthDays,
	}
}

// RollForward returns the cycle unchanged when it ends after now. A cycle that
// already ended, or ends exactly now, is replaced by one ending a year from now.
func (c BillingCycle) RollForward(now time.Time) BillingCycle {
	if c.PeriodEndAt.After(now) {
		return c
	}
	c.PeriodEndAt = now.AddDate(1, 0, 0)
	return c
}

// ProrationParams holds all necessary input for pricing a seat change.
type ProrationParams struct {
	OldSeats int
	NewSeats int
	Policy   *seatpolicy.SeatPolicy
	Cycle    BillingCycle
	// Now is the moment the change takes effect
	Now time.Time
}

// ProrationResult holds the output of a proration calculation.
// Amount is positive for a charge and negative for a credit.
type ProrationResult struct {
	Amount             decimal.Decimal     `json:"amount" swaggertype:"string"`
	Kind               types.ProrationKind `json:"kind"`
	DaysRemaining      decimal.Decimal     `json:"days_remaining" swaggertype:"string"`
	OldSeats           int                 `json:"old_seats"`
	NewSeats           int                 `json:"new_seats"`
	ExtraSeatsDelta    int                 `json:"extra_seats_delta"`
	AnnualPricePerSeat decimal.Decimal     `json:"annual_price_per_seat" swaggertype:"string"`
	PeriodEndAt        time.Time           `json:"period_end_at"`
	PeriodLengthDays   int                 `json:"period_length_days"`
	ProrationEnabled   bool                `json:"proration_enabled"`
}

// IsCharge reports whether the subscriber owes money
func (r *ProrationResult) IsCharge() bool {
	return r.Kind == types.ProrationKindCharge
}

// IsCredit reports whether money is owed back to the subscriber
func (r *ProrationResult) IsCredit() bool {
	return r.Kind == types.ProrationKindCredit
}

// SeatDelta is the change in total seats, including included ones
func (r *ProrationResult) SeatDelta() int {
	return r.NewSeats - r.OldSeats
}

// ProrationPercentage is the share of the period that is left, in percent
func (r *ProrationResult) ProrationPercentage() decimal.Decimal {
	if r.PeriodLengthDays <= 0 {
		return decimal.Zero
	}
	return r.DaysRemaining.Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(r.PeriodLengthDays))).
		Round(2)
}
