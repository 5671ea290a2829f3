package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent is the envelope published on the event topic and delivered to listeners
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Event names
const (
	WebhookEventSeatsUpdated      = "seats.updated"
	WebhookEventSeatsReset        = "seats.reset"
	WebhookEventCreditRecorded    = "seats.credit.recorded"
	WebhookEventPaymentDeferred   = "seats.payment.deferred"
	WebhookEventMembershipRemoved = "seats.membership.removed"
)
