package payment

import (
	"time"

	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// Request asks a gateway to move money for a subscriber.
// Amount is always the positive magnitude, the operation gives the direction.
type Request struct {
	SubscriberID int64
	Amount       decimal.Decimal
	Currency     string
	Description  string
	// IdempotencyKey makes retries of the same adjustment safe at the gateway
	IdempotencyKey string
	Metadata       map[string]string
}

// RecurringSeatsRequest sets the extra seat quantity of a recurring subscription
type RecurringSeatsRequest struct {
	SubscriberID   int64
	SubscriptionID string
	TotalSeats     int
	ExtraSeats     int
	IdempotencyKey string
}

// ChargeResult is a settled immediate charge
type ChargeResult struct {
	Ref    string
	Status string
}

// PayableDocument is an invoice the subscriber pays later
type PayableDocument struct {
	Ref    string
	URL    string
	Status types.PayableDocumentStatus
	DueAt  *time.Time
}

// CreditResult is a credit note posted at the gateway
type CreditResult struct {
	Ref string
}
