package proration

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() *seatpolicy.SeatPolicy {
	return &seatpolicy.SeatPolicy{
		LevelID:             1,
		DefaultSeats:        2,
		AllowExtra:          true,
		PricePerSeatMonthly: decimal.RequireFromString("1.50"),
		MaxSeats:            10,
		ProrationEnabled:    true,
	}
}

func TestCalculator_Calculate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	halfYear := now.Add(4380 * time.Hour)

	disabled := testPolicy()
	disabled.ProrationEnabled = false

	free := testPolicy()
	free.PricePerSeatMonthly = decimal.Zero

	tests := []struct {
		name           string
		params         ProrationParams
		expectedAmount string
		expectedKind   types.ProrationKind
		expectedDays   string
	}{
		{
			name: "add_three_extra_seats_half_year",
			params: ProrationParams{
				OldSeats: 2, NewSeats: 5, Policy: testPolicy(),
				Cycle: NewBillingCycle(halfYear, 365), Now: now,
			},
			expectedAmount: "27",
			expectedKind:   types.ProrationKindCharge,
			expectedDays:   "182.5",
		},
		{
			name: "remove_three_extra_seats_half_year",
			params: ProrationParams{
				OldSeats: 5, NewSeats: 2, Policy: testPolicy(),
				Cycle: NewBillingCycle(halfYear, 365), Now: now,
			},
			expectedAmount: "-27",
			expectedKind:   types.ProrationKindCredit,
			expectedDays:   "182.5",
		},
		{
			name: "proration_disabled",
			params: ProrationParams{
				OldSeats: 2, NewSeats: 5, Policy: disabled,
				Cycle: NewBillingCycle(halfYear, 365), Now: now,
			},
			expectedAmount: "0",
			expectedKind:   types.ProrationKindNone,
			expectedDays:   "0",
		},
		{
			name: "change_within_included_seats",
			params: ProrationParams{
				OldSeats: 1, NewSeats: 2, Policy: testPolicy(),
				Cycle: NewBillingCycle(halfYear, 365), Now: now,
			},
			expectedAmount: "0",
			expectedKind:   types.ProrationKindNone,
			expectedDays:   "182.5",
		},
		{
			name: "free_extra_seats",
			params: ProrationParams{
				OldSeats: 2, NewSeats: 8, Policy: free,
				Cycle: NewBillingCycle(halfYear, 365), Now: now,
			},
			expectedAmount: "0",
			expectedKind:   types.ProrationKindNone,
			expectedDays:   "182.5",
		},
		{
			name: "period_already_ended",
			params: ProrationParams{
				OldSeats: 2, NewSeats: 5, Policy: testPolicy(),
				Cycle: NewBillingCycle(now.Add(-time.Hour), 365), Now: now,
			},
			expectedAmount: "0",
			expectedKind:   types.ProrationKindNone,
			expectedDays:   "0",
		},
		{
			name: "period_longer_than_denominator_is_clamped",
			params: ProrationParams{
				OldSeats: 2, NewSeats: 3, Policy: testPolicy(),
				Cycle: NewBillingCycle(now.AddDate(2, 0, 0), 365), Now: now,
			},
			expectedAmount: "18",
			expectedKind:   types.ProrationKindCharge,
			expectedDays:   "365",
		},
		{
			name: "rounds_half_away_from_zero",
			params: ProrationParams{
				OldSeats: 2, NewSeats: 3,
				Policy: &seatpolicy.SeatPolicy{
					LevelID: 1, DefaultSeats: 2, PricePerSeatMonthly: decimal.RequireFromString("0.125"),
					MaxSeats: 10, ProrationEnabled: true,
				},
				Cycle: NewBillingCycle(now.Add(24*time.Hour), 12), Now: now,
			},
			// 1 * 1.50 * 1 / 12 = 0.125
			expectedAmount: "0.13",
			expectedKind:   types.ProrationKindCharge,
			expectedDays:   "1",
		},
		{
			name: "default_period_length",
			params: ProrationParams{
				OldSeats: 2, NewSeats: 5, Policy: testPolicy(),
				Cycle: BillingCycle{PeriodEndAt: halfYear}, Now: now,
			},
			expectedAmount: "27",
			expectedKind:   types.ProrationKindCharge,
			expectedDays:   "182.5",
		},
	}

	calc := NewCalculator(CalculatorTypeDay)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Calculate(context.Background(), tt.params)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.True(t, decimal.RequireFromString(tt.expectedAmount).Equal(result.Amount),
				"amount: expected %s, got %s", tt.expectedAmount, result.Amount)
			assert.Equal(t, tt.expectedKind, result.Kind)
			assert.True(t, decimal.RequireFromString(tt.expectedDays).Equal(result.DaysRemaining),
				"days: expected %s, got %s", tt.expectedDays, result.DaysRemaining)
			assert.Equal(t, tt.params.OldSeats, result.OldSeats)
			assert.Equal(t, tt.params.NewSeats, result.NewSeats)
		})
	}
}

func TestCalculator_WholeDays(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	params := ProrationParams{
		OldSeats: 2, NewSeats: 5, Policy: testPolicy(),
		Cycle: NewBillingCycle(now.Add(4380*time.Hour), 365), Now: now,
	}

	result, err := NewCalculator(CalculatorTypeWholeDay).Calculate(context.Background(), params)
	require.NoError(t, err)

	// 3 * 18 * 182 / 365 = 26.926...
	assert.True(t, decimal.NewFromInt(182).Equal(result.DaysRemaining))
	assert.True(t, decimal.RequireFromString("26.93").Equal(result.Amount), "got %s", result.Amount)
}

func TestCalculator_Symmetry(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	calc := NewCalculator(CalculatorTypeDay)
	cycle := NewBillingCycle(now.Add(97*24*time.Hour+5*time.Hour), 365)

	for oldSeats := 0; oldSeats <= 10; oldSeats++ {
		for newSeats := 0; newSeats <= 10; newSeats++ {
			up, err := calc.Calculate(context.Background(), ProrationParams{
				OldSeats: oldSeats, NewSeats: newSeats, Policy: testPolicy(), Cycle: cycle, Now: now,
			})
			require.NoError(t, err)
			down, err := calc.Calculate(context.Background(), ProrationParams{
				OldSeats: newSeats, NewSeats: oldSeats, Policy: testPolicy(), Cycle: cycle, Now: now,
			})
			require.NoError(t, err)

			assert.True(t, up.Amount.Neg().Equal(down.Amount), "%d->%d", oldSeats, newSeats)
			assert.Equal(t, up.ExtraSeatsDelta, -down.ExtraSeatsDelta)
			if newSeats > oldSeats {
				assert.False(t, up.Amount.IsNegative(), "adding seats never credits")
			}
		}
	}
}

func TestCalculator_MonotonicInTime(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cycle := NewBillingCycle(start.AddDate(1, 0, 0), 365)
	calc := NewCalculator(CalculatorTypeDay)

	previous := decimal.NewFromInt(1 << 30)
	for day := 0; day <= 370; day += 10 {
		result, err := calc.Calculate(context.Background(), ProrationParams{
			OldSeats: 2, NewSeats: 6, Policy: testPolicy(), Cycle: cycle, Now: start.AddDate(0, 0, day),
		})
		require.NoError(t, err)
		assert.True(t, result.Amount.LessThanOrEqual(previous), "day %d", day)
		previous = result.Amount
	}
	assert.True(t, previous.IsZero())
}

func TestCalculator_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	params := ProrationParams{
		OldSeats: 3, NewSeats: 7, Policy: testPolicy(),
		Cycle: NewBillingCycle(now.Add(1000*time.Hour), 365), Now: now,
	}
	calc := NewCalculator(CalculatorTypeDay)

	first, err := calc.Calculate(context.Background(), params)
	require.NoError(t, err)
	second, err := calc.Calculate(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculator_InvalidParams(t *testing.T) {
	now := time.Now()
	cycle := NewBillingCycle(now.Add(time.Hour), 365)
	calc := NewCalculator(CalculatorTypeDay)

	tests := []struct {
		name   string
		params ProrationParams
	}{
		{"missing_policy", ProrationParams{OldSeats: 1, NewSeats: 2, Cycle: cycle, Now: now}},
		{"negative_old_seats", ProrationParams{OldSeats: -1, NewSeats: 2, Policy: testPolicy(), Cycle: cycle, Now: now}},
		{"negative_new_seats", ProrationParams{OldSeats: 1, NewSeats: -2, Policy: testPolicy(), Cycle: cycle, Now: now}},
		{"missing_now", ProrationParams{OldSeats: 1, NewSeats: 2, Policy: testPolicy(), Cycle: cycle}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Calculate(context.Background(), tt.params)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestBillingCycle_RollForward(t *testing.T) {
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	future := NewBillingCycle(now.Add(time.Hour), 365)
	assert.Equal(t, future, future.RollForward(now))

	exact := NewBillingCycle(now, 365).RollForward(now)
	assert.Equal(t, now.AddDate(1, 0, 0), exact.PeriodEndAt)

	past := NewBillingCycle(now.AddDate(0, -2, 0), 360).RollForward(now)
	assert.Equal(t, now.AddDate(1, 0, 0), past.PeriodEndAt)
	assert.Equal(t, 360, past.PeriodLengthDays)

	assert.Equal(t, types.DefaultPeriodLengthDays, NewBillingCycle(now, 0).PeriodLengthDays)
}

func TestFormatMessage(t *testing.T) {
	opts := MessageOptions{CurrencySymbol: "€", Locale: "de"}

	charge := &ProrationResult{
		Amount: decimal.RequireFromString("27"), Kind: types.ProrationKindCharge,
		DaysRemaining: decimal.RequireFromString("182.5"), OldSeats: 2, NewSeats: 5, ProrationEnabled: true,
	}
	assert.Equal(t,
		"You will be charged €27,00 for 3 additional seat(s) for the remaining 183 days of your billing period.",
		FormatMessage(charge, opts))

	credit := &ProrationResult{
		Amount: decimal.RequireFromString("-27"), Kind: types.ProrationKindCredit,
		DaysRemaining: decimal.RequireFromString("182.4"), OldSeats: 5, NewSeats: 2, ProrationEnabled: true,
	}
	assert.Equal(t,
		"You will receive a credit of €27,00 for removing 3 seat(s) for the remaining 182 days of your billing period.",
		FormatMessage(credit, opts))

	none := &ProrationResult{Amount: decimal.Zero, Kind: types.ProrationKindNone, ProrationEnabled: true}
	assert.Equal(t, "No proration will be applied for this change.", FormatMessage(none, opts))

	disabled := &ProrationResult{Amount: decimal.Zero, Kind: types.ProrationKindNone}
	assert.Equal(t, "Proration is not enabled for your membership level.", FormatMessage(disabled, opts))

	english := FormatMessage(charge, MessageOptions{CurrencySymbol: "$", Locale: "en"})
	assert.Contains(t, english, "$27.00")
}
