package service

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/proration"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
)

// BillingCycleProvider finds the billing period a seat change is prorated against
type BillingCycleProvider interface {
	// GetCycle returns the current cycle of the subscriber. The period end may lie
	// in the past, callers roll it forward before pricing.
	GetCycle(ctx context.Context, sub *subscriber.Subscriber) (proration.BillingCycle, error)
}

type billingCycleProvider struct {
	ServiceParams
}

func NewBillingCycleProvider(params ServiceParams) BillingCycleProvider {
	return &billingCycleProvider{
		ServiceParams: params,
	}
}

func (s *billingCycleProvider) GetCycle(ctx context.Context, sub *subscriber.Subscriber) (proration.BillingCycle, error) {
	periodLength := s.Config.Seats.PeriodLengthDays
	now := s.now()

	if sub.HasRecurringCardSubscription() && s.PeriodSource != nil {
		end, err := s.PeriodSource.CurrentPeriodEnd(ctx, sub.StripeSubscriptionID)
		if err == nil && end.After(now) {
			return proration.NewBillingCycle(end, periodLength), nil
		}
		if err != nil && !ierr.IsNotFound(err) {
			s.Logger.Warnw("failed to read subscription period, falling back to order history",
				"error", err,
				"subscriber_id", sub.ID,
				"subscription_id", sub.StripeSubscriptionID)
		}
	}

	last, err := s.OrderRepo.GetLatest(ctx, &order.Filter{
		SubscriberID:    sub.ID,
		LevelID:         sub.LevelID,
		ExcludeGateways: []types.OrderGateway{types.OrderGatewayProration},
		Statuses:        []types.OrderStatus{types.OrderStatusSuccess, types.OrderStatusPending},
	})
	if err != nil {
		if !ierr.IsNotFound(err) {
			return proration.BillingCycle{}, err
		}
		return proration.NewBillingCycle(now.AddDate(1, 0, 0), periodLength), nil
	}

	return proration.NewBillingCycle(last.Timestamp.AddDate(1, 0, 0), periodLength), nil
}
