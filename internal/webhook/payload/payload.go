package payload

import (
	"encoding/json"
	"time"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// SeatsUpdated is sent after a seat adjustment was persisted
type SeatsUpdated struct {
	SubscriberID    int64               `json:"subscriber_id"`
	LevelID         int64               `json:"level_id"`
	OldSeats        int                 `json:"old_seats"`
	NewSeats        int                 `json:"new_seats"`
	ProrationAmount decimal.Decimal     `json:"proration_amount"`
	ProrationKind   types.ProrationKind `json:"proration_kind"`
	Currency        string              `json:"currency"`
	PaymentMethod   types.PaymentMethod `json:"payment_method"`
	PaymentRef      string              `json:"payment_ref,omitempty"`
	Actor           types.Actor         `json:"actor"`
	Message         string              `json:"message"`
}

// SeatsReset is sent when a level change moved the subscriber back to the included seats
type SeatsReset struct {
	SubscriberID int64 `json:"subscriber_id"`
	OldLevelID   int64 `json:"old_level_id"`
	NewLevelID   int64 `json:"new_level_id"`
	Seats        int   `json:"seats"`
}

// CreditRecorded is sent when a seat reduction produced a pending credit
type CreditRecorded struct {
	SubscriberID int64           `json:"subscriber_id"`
	CreditID     string          `json:"credit_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExternalRef  string          `json:"external_ref,omitempty"`
}

// PaymentDeferred is sent when an extra seat charge could not be invoiced right away
type PaymentDeferred struct {
	SubscriberID int64           `json:"subscriber_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Reason       string          `json:"reason"`
}

// MembershipRemoved is sent when a subscriber lost their level and seats were dropped
type MembershipRemoved struct {
	SubscriberID  int64 `json:"subscriber_id"`
	OldLevelID    int64 `json:"old_level_id"`
	CreditsVoided int   `json:"credits_voided"`
}

// Envelope is the body listeners receive
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEvent wraps a payload into a webhook event ready to publish
func NewEvent(eventName, userID string, occurredAt time.Time, data any) (*types.WebhookEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to encode %s payload", eventName).
			Mark(ierr.ErrSystem)
	}
	return &types.WebhookEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName: eventName,
		UserID:    userID,
		Timestamp: occurredAt.UTC(),
		Payload:   raw,
	}, nil
}

// Build renders the listener body of an event
func Build(event *types.WebhookEvent) ([]byte, error) {
	if event == nil || event.EventName == "" {
		return nil, ierr.NewError("event name is required").
			WithHint("Seat event must carry an event name").
			Mark(ierr.ErrValidation)
	}
	if !json.Valid(event.Payload) {
		return nil, ierr.NewError("invalid event payload").
			WithHintf("Payload of %s is not valid json", event.EventName).
			Mark(ierr.ErrValidation)
	}

	return json.Marshal(Envelope{
		EventID:    event.ID,
		EventType:  event.EventName,
		OccurredAt: event.Timestamp,
		Data:       event.Payload,
	})
}
