package service

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/order"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/samber/lo"
)

// evidenceOrderLookback bounds how many recent orders are inspected for a payment method
const evidenceOrderLookback = 10

// PaymentMethodResolver decides how a subscriber settles prorated charges
type PaymentMethodResolver interface {
	// Resolve never fails. Subscribers that cannot be loaded resolve to unknown.
	Resolve(ctx context.Context, subscriberID int64) types.PaymentMethod
}

type paymentMethodResolver struct {
	ServiceParams
}

func NewPaymentMethodResolver(params ServiceParams) PaymentMethodResolver {
	return &paymentMethodResolver{
		ServiceParams: params,
	}
}

func (s *paymentMethodResolver) Resolve(ctx context.Context, subscriberID int64) types.PaymentMethod {
	sub, err := s.SubscriberRepo.Get(ctx, subscriberID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			s.Logger.Errorw("failed to load subscriber for payment method",
				"error", err,
				"subscriber_id", subscriberID)
		}
		return types.PaymentMethodUnknown
	}

	// an active card subscription wins over anything the order history says
	if sub.HasRecurringCardSubscription() {
		return types.PaymentMethodRecurringCard
	}

	orders, err := s.OrderRepo.List(ctx, &order.Filter{
		SubscriberID:    subscriberID,
		ExcludeGateways: []types.OrderGateway{types.OrderGatewayProration},
		Statuses:        []types.OrderStatus{types.OrderStatusSuccess, types.OrderStatusPending},
		Limit:           evidenceOrderLookback,
	})
	if err != nil {
		s.Logger.Errorw("failed to list orders for payment method",
			"error", err,
			"subscriber_id", subscriberID)
	}

	if latest, ok := lo.Find(orders, func(o *order.Order) bool {
		return o.IsPaymentEvidence()
	}); ok {
		if method, known := latest.Gateway.PaymentMethod(); known {
			return method
		}
	}

	if sub.PreferredPaymentMethod != "" && sub.PreferredPaymentMethod != types.PaymentMethodUnknown {
		return sub.PreferredPaymentMethod
	}

	return types.PaymentMethodInvoice
}
