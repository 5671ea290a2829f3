package dto

import (
	"github.com/flexprice/playerseats/internal/domain/credit"
	"github.com/shopspring/decimal"
)

// CreditsResponse lists the pending credits a subscriber can still use
type CreditsResponse struct {
	SubscriberID   int64                   `json:"subscriber_id"`
	Items          []*credit.PendingCredit `json:"items"`
	TotalAvailable decimal.Decimal         `json:"total_available" swaggertype:"string"`
	Currency       string                  `json:"currency"`
}

// ApplyCreditsResult is the outcome of paying an amount with pending credits
type ApplyCreditsResult struct {
	AmountDue     decimal.Decimal `json:"amount_due" swaggertype:"string"`
	CreditApplied decimal.Decimal `json:"credit_applied" swaggertype:"string"`
	// Remaining is what the subscriber still has to pay
	Remaining decimal.Decimal `json:"remaining" swaggertype:"string"`
	CreditIDs []string        `json:"credit_ids"`
}
