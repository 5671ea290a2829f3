package service

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/webhook/payload"
)

// policyFor returns the stored policy of a level or the default policy when none was configured
func (p ServiceParams) policyFor(ctx context.Context, levelID int64) (*seatpolicy.SeatPolicy, error) {
	policy, err := p.SeatPolicyRepo.Get(ctx, levelID)
	if err == nil {
		return policy, nil
	}
	if ierr.IsNotFound(err) {
		return seatpolicy.DefaultPolicy(levelID), nil
	}
	return nil, err
}

// subscriberWithMembership loads a subscriber that currently holds a level
func (p ServiceParams) subscriberWithMembership(ctx context.Context, subscriberID int64) (*subscriber.Subscriber, error) {
	sub, err := p.SubscriberRepo.Get(ctx, subscriberID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if sub == nil || !sub.HasMembership() {
		return nil, ierr.NewError("subscriber has no active membership").
			WithHint("Seats can only be changed while a membership is active").
			WithReportableDetails(map[string]any{
				"subscriber_id": subscriberID,
			}).
			MarkAlso(ierr.ErrInvalidOperation).
			Mark(seat.ErrNoMembership)
	}
	return sub, nil
}

// stateFor returns the saved seat state or the unsaved default state of the level.
// A state saved under another level is reported as is, the membership change hook resets it.
func (p ServiceParams) stateFor(ctx context.Context, subscriberID int64, policy *seatpolicy.SeatPolicy) (*seat.State, error) {
	state, err := p.SeatRepo.Get(ctx, subscriberID)
	if err == nil {
		return state, nil
	}
	if ierr.IsNotFound(err) {
		return seat.NewDefaultState(subscriberID, policy), nil
	}
	return nil, err
}

func (p ServiceParams) maxSeatsCap() int {
	return p.Config.Seats.MaxSeatsCap
}

// baseModel stamps a new record with the service clock and the caller
func (p ServiceParams) baseModel(ctx context.Context) types.BaseModel {
	bm := types.GetDefaultBaseModel(ctx)
	bm.CreatedAt = p.now()
	bm.UpdatedAt = bm.CreatedAt
	return bm
}

// publishEvent hands a seat event to the webhook pipeline. Delivery problems never
// fail the caller, the change they describe has already been saved.
func (p ServiceParams) publishEvent(ctx context.Context, eventName string, data any) {
	if p.WebhookPublisher == nil {
		return
	}

	event, err := payload.NewEvent(eventName, types.GetUserID(ctx), p.now(), data)
	if err != nil {
		p.Logger.Errorw("failed to build seat event",
			"error", err,
			"event_name", eventName)
		return
	}

	if err := p.WebhookPublisher.PublishWebhook(ctx, event); err != nil {
		p.Logger.Errorw("failed to publish seat event",
			"error", err,
			"event_id", event.ID,
			"event_name", eventName)
	}
}
