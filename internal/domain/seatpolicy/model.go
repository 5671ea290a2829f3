package seatpolicy

import (
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// SeatPolicy is the per membership level configuration of included and extra seats.
// It is set by an administrator and only read while pricing seat changes.
type SeatPolicy struct {
	LevelID             int64           `db:"level_id" json:"level_id"`
	DefaultSeats        int             `db:"default_seats" json:"default_seats"`
	AllowExtra          bool            `db:"allow_extra" json:"allow_extra"`
	PricePerSeatMonthly decimal.Decimal `db:"price_per_seat_monthly" json:"price_per_seat_monthly" swaggertype:"string"`
	// BillingAmount is the recurring level price per billing period, extra seats not included
	BillingAmount decimal.Decimal `db:"billing_amount" json:"billing_amount" swaggertype:"string"`
	// MaxSeats of zero means unlimited, which is still capped by MaxSeatsCap
	MaxSeats         int           `db:"max_seats" json:"max_seats"`
	ProrationEnabled bool          `db:"proration_enabled" json:"proration_enabled"`
	Features         types.CSVList `db:"features" json:"features"`

	types.BaseModel
}

// DefaultPolicy is used for levels that were never configured
func DefaultPolicy(levelID int64) *SeatPolicy {
	return &SeatPolicy{
		LevelID:             levelID,
		DefaultSeats:        1,
		AllowExtra:          false,
		PricePerSeatMonthly: decimal.Zero,
		BillingAmount:       decimal.Zero,
		MaxSeats:            1,
		ProrationEnabled:    true,
		Features:            types.CSVList{},
	}
}

func (p *SeatPolicy) TableName() string {
	return "seat_policies"
}

// EffectiveMax is the highest seat count a subscriber of this level may hold.
// Unlimited and oversized maxima fall back to the cap.
func (p *SeatPolicy) EffectiveMax(ceiling int) int {
	if ceiling <= 0 {
		ceiling = types.MaxSeatsCap
	}
	if p.MaxSeats <= 0 || p.MaxSeats > ceiling {
		return ceiling
	}
	return p.MaxSeats
}

// ExtraSeats is the number of paid seats above the included default
func (p *SeatPolicy) ExtraSeats(seats int) int {
	return max(0, seats-p.DefaultSeats)
}

// AnnualPricePerSeat is the monthly price times twelve
func (p *SeatPolicy) AnnualPricePerSeat() decimal.Decimal {
	return p.PricePerSeatMonthly.Mul(decimal.NewFromInt(12))
}

// AdditionalAnnualCost is what a subscriber pays at checkout for the given seat count
func (p *SeatPolicy) AdditionalAnnualCost(seats int) decimal.Decimal {
	if !p.AllowExtra {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(p.ExtraSeats(seats))).Mul(p.AnnualPricePerSeat())
}

// RenewalAmount is the level price plus every extra seat at the annual rate.
// Extra seats bought through adjustments renew even when the level no longer
// sells them at checkout.
func (p *SeatPolicy) RenewalAmount(seats int) decimal.Decimal {
	extra := decimal.NewFromInt(int64(p.ExtraSeats(seats))).Mul(p.AnnualPricePerSeat())
	return p.BillingAmount.Add(extra)
}

// CheckoutTotal is what a new member pays for the level with the given seat count
func (p *SeatPolicy) CheckoutTotal(seats int) decimal.Decimal {
	return p.BillingAmount.Add(p.AdditionalAnnualCost(seats))
}

// HasFeature reports whether the level grants the named feature
func (p *SeatPolicy) HasFeature(name string) bool {
	return p.Features.Contains(name)
}

// ClampSeats keeps a seat count inside [DefaultSeats, EffectiveMax]
func (p *SeatPolicy) ClampSeats(seats, ceiling int) int {
	seats = max(seats, p.DefaultSeats)
	return min(seats, max(p.EffectiveMax(ceiling), p.DefaultSeats))
}

func (p *SeatPolicy) Validate() error {
	if p.LevelID <= 0 {
		return ierr.NewError("level id is required").
			WithHint("Seat policy must belong to a membership level").
			Mark(ierr.ErrValidation)
	}

	if p.DefaultSeats < 0 {
		return ierr.NewError("default seats must not be negative").
			WithHint("Included seats cannot be negative").
			WithReportableDetails(map[string]any{
				"default_seats": p.DefaultSeats,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.MaxSeats < 0 {
		return ierr.NewError("max seats must not be negative").
			WithHint("Maximum seats cannot be negative").
			WithReportableDetails(map[string]any{
				"max_seats": p.MaxSeats,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.PricePerSeatMonthly.IsNegative() {
		return ierr.NewError("price per seat must not be negative").
			WithHint("Price per extra seat cannot be negative").
			WithReportableDetails(map[string]any{
				"price_per_seat_monthly": p.PricePerSeatMonthly.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if p.BillingAmount.IsNegative() {
		return ierr.NewError("billing amount must not be negative").
			WithHint("Level price cannot be negative").
			WithReportableDetails(map[string]any{
				"billing_amount": p.BillingAmount.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
