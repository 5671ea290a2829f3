package stripe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/playerseats/internal/domain/payment"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

// SubscriptionPeriodSource reads renewal dates of Stripe subscriptions
type SubscriptionPeriodSource struct {
	client *Client
	logger *logger.Logger
}

var _ payment.SubscriptionPeriodSource = (*SubscriptionPeriodSource)(nil)

func NewSubscriptionPeriodSource(client *Client, logger *logger.Logger) *SubscriptionPeriodSource {
	return &SubscriptionPeriodSource{
		client: client,
		logger: logger,
	}
}

// CurrentPeriodEnd returns the latest current_period_end across the subscription items
func (s *SubscriptionPeriodSource) CurrentPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error) {
	sc, err := s.client.GetStripeClient(ctx)
	if err != nil {
		return time.Time{}, err
	}

	sub, err := sc.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return time.Time{}, ierr.WithError(err).
				WithHintf("Subscription %s does not exist", subscriptionID).
				Mark(ierr.ErrNotFound)
		}
		s.logger.Errorw("failed to retrieve subscription from Stripe",
			"error", err,
			"subscription_id", subscriptionID)
		return time.Time{}, ierr.WithError(err).
			WithHint("Could not fetch subscription information from Stripe").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	var items []*stripe.SubscriptionItem
	if sub.Items != nil {
		items = sub.Items.Data
	}
	end := lo.Max(lo.Map(items, func(item *stripe.SubscriptionItem, _ int) int64 {
		return item.CurrentPeriodEnd
	}))
	if end <= 0 {
		return time.Time{}, ierr.NewError("subscription has no current period").
			WithHintf("Subscription %s has no billing period", subscriptionID).
			Mark(ierr.ErrNotFound)
	}

	return time.Unix(end, 0).UTC(), nil
}
