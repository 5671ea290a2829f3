package proration

import (
	"context"
	"time"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator prices a change in seat count for the remainder of a billing cycle.
// Implementations are pure: the same params always produce the same result.
type Calculator interface {
	Calculate(ctx context.Context, params ProrationParams) (*ProrationResult, error)
}

// CalculatorType defines the type of proration calculation to use
type CalculatorType string

const (
	// CalculatorTypeDay counts the remaining time in fractional days
	CalculatorTypeDay CalculatorType = "day"
	// CalculatorTypeWholeDay only counts full days left in the cycle
	CalculatorTypeWholeDay CalculatorType = "whole_day"
)

var dayDuration = decimal.NewFromInt(int64(24 * time.Hour))

// NewCalculator creates a proration calculator of the specified type.
func NewCalculator(calculatorType CalculatorType) Calculator {
	switch calculatorType {
	case CalculatorTypeWholeDay:
		return &calculator{wholeDays: true}
	default:
		return &calculator{}
	}
}

type calculator struct {
	wholeDays bool
}

func (c *calculator) Calculate(ctx context.Context, params ProrationParams) (*ProrationResult, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	periodLength := params.Cycle.PeriodLengthDays
	if periodLength <= 0 {
		periodLength = types.DefaultPeriodLengthDays
	}

	result := &ProrationResult{
		Amount:             decimal.Zero,
		Kind:               types.ProrationKindNone,
		DaysRemaining:      decimal.Zero,
		OldSeats:           params.OldSeats,
		NewSeats:           params.NewSeats,
		ExtraSeatsDelta:    params.Policy.ExtraSeats(params.NewSeats) - params.Policy.ExtraSeats(params.OldSeats),
		AnnualPricePerSeat: params.Policy.AnnualPricePerSeat(),
		PeriodEndAt:        params.Cycle.PeriodEndAt,
		PeriodLengthDays:   periodLength,
		ProrationEnabled:   params.Policy.ProrationEnabled,
	}

	if !params.Policy.ProrationEnabled {
		return result, nil
	}

	result.DaysRemaining = c.daysRemaining(params.Cycle.PeriodEndAt, params.Now, periodLength)

	// multiply before dividing so the period fraction is never rounded on its own
	amount := decimal.NewFromInt(int64(result.ExtraSeatsDelta)).
		Mul(result.AnnualPricePerSeat).
		Mul(result.DaysRemaining).
		Div(decimal.NewFromInt(int64(periodLength))).
		Round(2)

	result.Amount = amount
	switch {
	case amount.IsPositive():
		result.Kind = types.ProrationKindCharge
	case amount.IsNegative():
		result.Kind = types.ProrationKindCredit
	default:
		result.Amount = decimal.Zero
	}

	return result, nil
}

// daysRemaining is the time from now until the period end in days,
// clamped to [0, periodLength]
func (c *calculator) daysRemaining(periodEnd, now time.Time, periodLength int) decimal.Decimal {
	remaining := periodEnd.Sub(now)
	if remaining <= 0 {
		return decimal.Zero
	}

	days := decimal.NewFromInt(int64(remaining)).Div(dayDuration)
	if c.wholeDays {
		days = days.Floor()
	}

	return decimal.Min(days, decimal.NewFromInt(int64(periodLength)))
}

func validateParams(params ProrationParams) error {
	if params.Policy == nil {
		return ierr.NewError("seat policy is required").
			WithHint("Proration needs the seat policy of the membership level").
			Mark(ierr.ErrValidation)
	}

	if params.OldSeats < 0 || params.NewSeats < 0 {
		return ierr.NewError("seat counts must not be negative").
			WithHint("Seat counts cannot be negative").
			WithReportableDetails(map[string]any{
				"old_seats": params.OldSeats,
				"new_seats": params.NewSeats,
			}).
			Mark(ierr.ErrValidation)
	}

	if params.Policy.PricePerSeatMonthly.IsNegative() {
		return ierr.NewError("price per seat must not be negative").
			WithHint("Price per extra seat cannot be negative").
			WithReportableDetails(map[string]any{
				"price_per_seat_monthly": params.Policy.PricePerSeatMonthly.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if params.Now.IsZero() {
		return ierr.NewError("proration time is required").
			WithHint("Proration needs the time the change takes effect").
			Mark(ierr.ErrValidation)
	}

	return nil
}
