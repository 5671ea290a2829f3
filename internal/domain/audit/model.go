package audit

import (
	"time"

	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// Entry records one completed seat change
type Entry struct {
	ID              string              `db:"id" json:"id"`
	SubscriberID    int64               `db:"subscriber_id" json:"subscriber_id"`
	Timestamp       time.Time           `db:"timestamp" json:"timestamp"`
	OldSeats        int                 `db:"old_seats" json:"old_seats"`
	NewSeats        int                 `db:"new_seats" json:"new_seats"`
	ProrationAmount decimal.Decimal     `db:"proration_amount" json:"proration_amount" swaggertype:"string"`
	ProrationKind   types.ProrationKind `db:"proration_kind" json:"proration_kind"`
	ActorID         string              `db:"actor_id" json:"actor_id"`
	ActorType       types.ActorType     `db:"actor_type" json:"actor_type"`
	PaymentMethod   types.PaymentMethod `db:"payment_method" json:"payment_method,omitempty"`
	PaymentRef      string              `db:"payment_ref" json:"payment_ref,omitempty"`
}

func (e *Entry) TableName() string {
	return "seat_audit_log"
}
