package credit

import (
	"time"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// PendingCredit is money owed back to a subscriber after a seat reduction.
// It is consumed at the next checkout or renewal.
type PendingCredit struct {
	ID           string          `db:"id" json:"id"`
	SubscriberID int64           `db:"subscriber_id" json:"subscriber_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount" swaggertype:"string"`
	// Remaining is the part of Amount not yet consumed
	Remaining   decimal.Decimal    `db:"remaining" json:"remaining" swaggertype:"string"`
	Currency    string             `db:"currency" json:"currency"`
	Description string             `db:"description" json:"description"`
	Status      types.CreditStatus `db:"status" json:"status"`
	// ExternalRef is the credit note posted at the payment gateway, if any
	ExternalRef string     `db:"external_ref" json:"external_ref,omitempty"`
	AppliedAt   *time.Time `db:"applied_at" json:"applied_at,omitempty"`

	types.BaseModel
}

func (c *PendingCredit) TableName() string {
	return "pending_credits"
}

func (c *PendingCredit) Validate() error {
	if !c.Amount.IsPositive() {
		return ierr.NewError("credit amount must be positive").
			WithHint("Credit amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": c.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if c.Remaining.IsNegative() || c.Remaining.GreaterThan(c.Amount) {
		return ierr.NewError("credit remaining out of range").
			WithHint("Remaining credit must be between zero and the credit amount").
			WithReportableDetails(map[string]any{
				"amount":    c.Amount.String(),
				"remaining": c.Remaining.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Consume takes up to amount from the credit and returns what was taken.
// A fully consumed credit becomes applied.
func (c *PendingCredit) Consume(amount decimal.Decimal, at time.Time) decimal.Decimal {
	if c.Status != types.CreditStatusAvailable || !amount.IsPositive() {
		return decimal.Zero
	}
	taken := decimal.Min(amount, c.Remaining)
	c.Remaining = c.Remaining.Sub(taken)
	if c.Remaining.IsZero() {
		c.Status = types.CreditStatusApplied
		c.AppliedAt = &at
	}
	c.UpdatedAt = at
	return taken
}
