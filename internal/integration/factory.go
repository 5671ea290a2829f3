package integration

import (
	"context"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	"github.com/flexprice/playerseats/internal/integration/offline"
	"github.com/flexprice/playerseats/internal/integration/stripe"
	"github.com/flexprice/playerseats/internal/logger"
)

// Factory builds the payment gateways used by seat adjustments
type Factory struct {
	config       *config.Configuration
	logger       *logger.Logger
	stripeClient *stripe.Client
	stripe       *stripe.Gateway
	offline      *offline.Gateway
	periodSource *stripe.SubscriptionPeriodSource
}

// NewFactory creates a new integration factory
func NewFactory(
	cfg *config.Configuration,
	logger *logger.Logger,
	subscriberRepo subscriber.Repository,
	orderRepo order.Repository,
) *Factory {
	stripeClient := stripe.NewClient(cfg, subscriberRepo, logger)
	return &Factory{
		config:       cfg,
		logger:       logger,
		stripeClient: stripeClient,
		stripe:       stripe.NewGateway(stripeClient, cfg, logger),
		offline:      offline.NewGateway(orderRepo, subscriberRepo, cfg, logger),
		periodSource: stripe.NewSubscriptionPeriodSource(stripeClient, logger),
	}
}

// GetGateway returns a gateway that bills members with a Stripe customer through
// Stripe and everyone else through offline orders
func (f *Factory) GetGateway() payment.Gateway {
	return &routingGateway{factory: f}
}

// GetPeriodSource returns the renewal lookup for card subscriptions
func (f *Factory) GetPeriodSource() payment.SubscriptionPeriodSource {
	return f.periodSource
}

func (f *Factory) gatewayFor(ctx context.Context, subscriberID int64) payment.Gateway {
	if f.stripeClient.HasCustomer(ctx, subscriberID) {
		return f.stripe
	}
	return f.offline
}

type routingGateway struct {
	factory *Factory
}

func (g *routingGateway) ChargeNow(ctx context.Context, req *payment.Request) (*payment.ChargeResult, error) {
	return g.factory.gatewayFor(ctx, req.SubscriberID).ChargeNow(ctx, req)
}

func (g *routingGateway) CreatePayableDocument(ctx context.Context, req *payment.Request) (*payment.PayableDocument, error) {
	return g.factory.gatewayFor(ctx, req.SubscriberID).CreatePayableDocument(ctx, req)
}

// UpdateRecurringSeats is a no-op for members the offline gateway bills, their
// renewal amount is read from the seat state
func (g *routingGateway) UpdateRecurringSeats(ctx context.Context, req *payment.RecurringSeatsRequest) error {
	if updater, ok := g.factory.gatewayFor(ctx, req.SubscriberID).(payment.RecurringSeatUpdater); ok {
		return updater.UpdateRecurringSeats(ctx, req)
	}
	return nil
}

func (g *routingGateway) RecordCredit(ctx context.Context, req *payment.Request) (*payment.CreditResult, error) {
	return g.factory.gatewayFor(ctx, req.SubscriberID).RecordCredit(ctx, req)
}
