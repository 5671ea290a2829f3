package stripe

import (
	"context"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Client handles Stripe API client setup and customer lookup
type Client struct {
	stripeClient   *stripe.Client
	subscriberRepo subscriber.Repository
	logger         *logger.Logger
}

// NewClient creates a new Stripe client. Without a secret key every call fails
// with a not found error so callers can fall back to offline handling.
func NewClient(
	cfg *config.Configuration,
	subscriberRepo subscriber.Repository,
	logger *logger.Logger,
) *Client {
	c := &Client{
		subscriberRepo: subscriberRepo,
		logger:         logger,
	}
	if cfg.Stripe.Enabled && cfg.Stripe.SecretKey != "" {
		c.stripeClient = stripe.NewClient(cfg.Stripe.SecretKey)
	}
	return c
}

// Enabled reports whether a Stripe account is configured
func (c *Client) Enabled() bool {
	return c != nil && c.stripeClient != nil
}

// GetStripeClient returns the configured Stripe client
func (c *Client) GetStripeClient(ctx context.Context) (*stripe.Client, error) {
	if !c.Enabled() {
		return nil, ierr.NewError("stripe is not configured").
			WithHint("Card payments are not configured").
			Mark(ierr.ErrNotFound)
	}
	return c.stripeClient, nil
}

// CustomerFor returns the Stripe customer of a subscriber. Members without one
// have no card on file.
func (c *Client) CustomerFor(ctx context.Context, subscriberID int64) (string, error) {
	sub, err := c.subscriberRepo.Get(ctx, subscriberID)
	if err != nil {
		return "", err
	}
	if sub.StripeCustomerID == "" {
		return "", ierr.NewError("subscriber has no stripe customer").
			WithHint("No card on file for this member").
			WithReportableDetails(map[string]any{
				"subscriber_id": subscriberID,
			}).
			Mark(seat.ErrNoPaymentMethod)
	}
	return sub.StripeCustomerID, nil
}

// HasCustomer reports whether the subscriber can be billed through Stripe
func (c *Client) HasCustomer(ctx context.Context, subscriberID int64) bool {
	if !c.Enabled() {
		return false
	}
	_, err := c.CustomerFor(ctx, subscriberID)
	return err == nil
}
