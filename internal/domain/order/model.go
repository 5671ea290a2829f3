package order

import (
	"time"

	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// Order is a membership order. Checkout creates them for level purchases and
// the offline gateway records one for each invoiced seat adjustment.
type Order struct {
	ID           string             `db:"id" json:"id"`
	Code         string             `db:"code" json:"code"`
	SubscriberID int64              `db:"subscriber_id" json:"subscriber_id"`
	LevelID      int64              `db:"level_id" json:"level_id"`
	Gateway      types.OrderGateway `db:"gateway" json:"gateway"`
	Status       types.OrderStatus  `db:"status" json:"status"`
	Total        decimal.Decimal    `db:"total" json:"total" swaggertype:"string"`
	Currency     string             `db:"currency" json:"currency"`
	Notes        string             `db:"notes" json:"notes"`
	// ExternalRef is the invoice or credit note id at the gateway
	ExternalRef string    `db:"external_ref" json:"external_ref,omitempty"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`

	types.BaseModel
}

func (o *Order) TableName() string {
	return "membership_orders"
}

// IsPaymentEvidence reports whether the order tells us how the member pays
func (o *Order) IsPaymentEvidence() bool {
	if o.Gateway == "" || o.Gateway == types.OrderGatewayProration {
		return false
	}
	return o.Status.IsSettledOrPending()
}
