package dto

import (
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/shopspring/decimal"
)

// MembershipChangeRequest tells the service that a subscriber moved to another level.
// Level 0 means the membership was cancelled.
type MembershipChangeRequest struct {
	SubscriberID int64 `json:"-"`
	LevelID      int64 `json:"level_id" validate:"min=0"`
	// Seats is the count bought at checkout, the level default when unset
	Seats *int `json:"seats,omitempty" validate:"omitempty,min=0"`
	// ApplyCredits pays the checkout total with pending credits once the seats are saved
	ApplyCredits bool `json:"apply_credits"`
}

func (r *MembershipChangeRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.LevelID == 0 && (r.Seats != nil || r.ApplyCredits) {
		return ierr.NewError("seats given for a cancelled membership").
			WithHint("A cancelled membership has no seats to buy").
			WithReportableDetails(map[string]any{
				"subscriber_id": r.SubscriberID,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MembershipChangeResponse reports what happened to the seats
type MembershipChangeResponse struct {
	SubscriberID      int64               `json:"subscriber_id"`
	OldLevelID        int64               `json:"old_level_id"`
	NewLevelID        int64               `json:"new_level_id"`
	Seats             int                 `json:"seats"`
	NextRenewalAmount decimal.Decimal     `json:"next_renewal_amount" swaggertype:"string"`
	Credits           *ApplyCreditsResult `json:"credits,omitempty"`
	Removed           bool                `json:"removed"`
	CreditsVoided     int                 `json:"credits_voided"`
}
