package subscriber

import (
	"github.com/flexprice/playerseats/internal/types"
)

// Subscriber is a member holding a membership level.
// The membership platform owns the record, this service only reads it.
type Subscriber struct {
	ID      int64  `db:"id" json:"id"`
	Email   string `db:"email" json:"email"`
	Name    string `db:"name" json:"name"`
	LevelID int64  `db:"level_id" json:"level_id"`
	// StripeCustomerID and StripeSubscriptionID are empty for non card members
	StripeCustomerID     string `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string `db:"stripe_subscription_id" json:"stripe_subscription_id,omitempty"`
	// PreferredPaymentMethod is the method the member picked at checkout, if any
	PreferredPaymentMethod types.PaymentMethod `db:"preferred_payment_method" json:"preferred_payment_method,omitempty"`

	types.BaseModel
}

func (s *Subscriber) TableName() string {
	return "subscribers"
}

// HasMembership reports whether the subscriber currently holds a level
func (s *Subscriber) HasMembership() bool {
	return s.LevelID > 0
}

// HasRecurringCardSubscription reports whether a card processor bills the member
func (s *Subscriber) HasRecurringCardSubscription() bool {
	return s.StripeSubscriptionID != ""
}
