package dto

import (
	"time"

	"github.com/flexprice/playerseats/internal/domain/proration"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// PreviewSeatsRequest prices a seat change without applying it.
// OldSeats defaults to the subscriber's current seats.
type PreviewSeatsRequest struct {
	OldSeats *int `json:"old_seats,omitempty" validate:"omitempty,min=0"`
	NewSeats int  `json:"new_seats" validate:"min=0"`
}

func (r *PreviewSeatsRequest) Validate() error {
	return validateStruct(r)
}

// ProrationBreakdown explains how the amount was derived
type ProrationBreakdown struct {
	MonthlyPricePerSeat decimal.Decimal `json:"monthly_price_per_seat" swaggertype:"string"`
	AnnualPricePerSeat  decimal.Decimal `json:"annual_price_per_seat" swaggertype:"string"`
	DaysRemaining       int64           `json:"days_remaining"`
	DaysInPeriod        int             `json:"days_in_period"`
	ProrationPercentage decimal.Decimal `json:"proration_percentage" swaggertype:"string"`
}

// ProrationResponse is a priced seat change
type ProrationResponse struct {
	ProrationEnabled     bool                `json:"proration_enabled"`
	Amount               decimal.Decimal     `json:"amount" swaggertype:"string"`
	Kind                 types.ProrationKind `json:"kind"`
	Currency             string              `json:"currency"`
	DaysRemaining        int64               `json:"days_remaining"`
	NextPaymentDate      time.Time           `json:"next_payment_date"`
	CurrentSeats         int                 `json:"current_seats"`
	NewSeats             int                 `json:"new_seats"`
	SeatDifference       int                 `json:"seat_difference"`
	ExtraSeatsDifference int                 `json:"extra_seats_difference"`
	Message              string              `json:"message"`
	Breakdown            ProrationBreakdown  `json:"breakdown"`
}

// NewProrationResponse renders a calculator result
func NewProrationResponse(r *proration.ProrationResult, monthly decimal.Decimal, currency string, opts proration.MessageOptions) *ProrationResponse {
	if r == nil {
		return nil
	}
	days := r.DaysRemaining.Round(0).IntPart()
	return &ProrationResponse{
		ProrationEnabled:     r.ProrationEnabled,
		Amount:               r.Amount,
		Kind:                 r.Kind,
		Currency:             currency,
		DaysRemaining:        days,
		NextPaymentDate:      r.PeriodEndAt,
		CurrentSeats:         r.OldSeats,
		NewSeats:             r.NewSeats,
		SeatDifference:       r.SeatDelta(),
		ExtraSeatsDifference: r.ExtraSeatsDelta,
		Message:              proration.FormatMessage(r, opts),
		Breakdown: ProrationBreakdown{
			MonthlyPricePerSeat: monthly,
			AnnualPricePerSeat:  r.AnnualPricePerSeat,
			DaysRemaining:       days,
			DaysInPeriod:        r.PeriodLengthDays,
			ProrationPercentage: r.ProrationPercentage(),
		},
	}
}
