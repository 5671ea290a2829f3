package dto

import "github.com/shopspring/decimal"

// CheckoutQuoteRequest prices a seat count for a level before purchase.
// With a subscriber the quote also deducts the subscriber's pending credits.
type CheckoutQuoteRequest struct {
	SubscriberID int64 `json:"-"`
	LevelID      int64 `json:"level_id" validate:"required,min=1"`
	Seats        int   `json:"seats" validate:"min=0"`
}

func (r *CheckoutQuoteRequest) Validate() error {
	return validateStruct(r)
}

// CheckoutQuoteResponse is the level price plus the extra annual seat cost,
// less whatever pending credits would pay for
type CheckoutQuoteResponse struct {
	LevelID              int64           `json:"level_id"`
	Seats                int             `json:"seats"`
	DefaultSeats         int             `json:"default_seats"`
	MaxSeats             int             `json:"max_seats"`
	ExtraSeats           int             `json:"extra_seats"`
	AnnualPricePerSeat   decimal.Decimal `json:"annual_price_per_seat" swaggertype:"string"`
	AdditionalAnnualCost decimal.Decimal `json:"additional_annual_cost" swaggertype:"string"`
	LevelPrice           decimal.Decimal `json:"level_price" swaggertype:"string"`
	Total                decimal.Decimal `json:"total" swaggertype:"string"`
	CreditAvailable      decimal.Decimal `json:"credit_available" swaggertype:"string"`
	CreditApplied        decimal.Decimal `json:"credit_applied" swaggertype:"string"`
	AmountDue            decimal.Decimal `json:"amount_due" swaggertype:"string"`
	Currency             string          `json:"currency"`
}
