package seat

import (
	"time"

	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/types"
)

// State is the seat count a subscriber currently holds.
// Version is zero until the state is first saved and increments on every save.
type State struct {
	SubscriberID     int64      `db:"subscriber_id" json:"subscriber_id"`
	LevelID          int64      `db:"level_id" json:"level_id"`
	CurrentSeats     int        `db:"current_seats" json:"current_seats"`
	LastAdjustmentAt *time.Time `db:"last_adjustment_at" json:"last_adjustment_at,omitempty"`
	Version          int64      `db:"version" json:"version"`

	types.BaseModel
}

func (s *State) TableName() string {
	return "subscriber_seats"
}

// NewDefaultState builds the unsaved state a subscriber starts with
func NewDefaultState(subscriberID int64, policy *seatpolicy.SeatPolicy) *State {
	return &State{
		SubscriberID: subscriberID,
		LevelID:      policy.LevelID,
		CurrentSeats: policy.DefaultSeats,
	}
}

// IsNew reports whether the state was never persisted
func (s *State) IsNew() bool {
	return s.Version == 0
}

// ExtraSeats returns the paid seats above the level default
func (s *State) ExtraSeats(policy *seatpolicy.SeatPolicy) int {
	return policy.ExtraSeats(s.CurrentSeats)
}
