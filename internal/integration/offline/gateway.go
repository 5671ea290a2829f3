package offline

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
)

// Gateway records seat adjustments of members who pay by check or bank transfer
// as membership orders. Staff settle them by hand, so nothing is charged.
type Gateway struct {
	orderRepo      order.Repository
	subscriberRepo subscriber.Repository
	config         *config.PaymentConfig
	currency       string
	logger         *logger.Logger
	now            func() time.Time
}

var _ payment.Gateway = (*Gateway)(nil)

func NewGateway(
	orderRepo order.Repository,
	subscriberRepo subscriber.Repository,
	cfg *config.Configuration,
	logger *logger.Logger,
) *Gateway {
	return &Gateway{
		orderRepo:      orderRepo,
		subscriberRepo: subscriberRepo,
		config:         &cfg.Payment,
		currency:       cfg.Seats.Currency,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ChargeNow always fails, there is no stored card to charge
func (g *Gateway) ChargeNow(ctx context.Context, req *payment.Request) (*payment.ChargeResult, error) {
	return nil, ierr.NewError("offline gateway cannot charge immediately").
		WithHint("No card on file for an immediate charge").
		WithReportableDetails(map[string]any{
			"subscriber_id": req.SubscriberID,
		}).
		Mark(seat.ErrNoPaymentMethod)
}

// CreatePayableDocument records a pending proration order the member pays by invoice
func (g *Gateway) CreatePayableDocument(ctx context.Context, req *payment.Request) (*payment.PayableDocument, error) {
	o, err := g.recordOrder(ctx, req, types.OrderStatusPending, req.Amount)
	if err != nil {
		return nil, err
	}

	dueAt := o.Timestamp.AddDate(0, 0, g.config.InvoiceDaysUntilDue)
	doc := &payment.PayableDocument{
		Ref:    o.Code,
		Status: types.PayableDocumentStatusOpen,
		DueAt:  &dueAt,
	}
	if g.config.InvoiceURLTemplate != "" {
		doc.URL = fmt.Sprintf(g.config.InvoiceURLTemplate, o.Code)
	}

	g.logger.Infow("recorded offline invoice for seat adjustment",
		"subscriber_id", req.SubscriberID,
		"order_code", o.Code,
		"amount", req.Amount)

	return doc, nil
}

// RecordCredit records a settled negative proration order
func (g *Gateway) RecordCredit(ctx context.Context, req *payment.Request) (*payment.CreditResult, error) {
	o, err := g.recordOrder(ctx, req, types.OrderStatusSuccess, req.Amount.Neg())
	if err != nil {
		return nil, err
	}

	g.logger.Infow("recorded offline credit for seat adjustment",
		"subscriber_id", req.SubscriberID,
		"order_code", o.Code,
		"amount", req.Amount)

	return &payment.CreditResult{Ref: o.Code}, nil
}

func (g *Gateway) recordOrder(ctx context.Context, req *payment.Request, status types.OrderStatus, total decimal.Decimal) (*order.Order, error) {
	sub, err := g.subscriberRepo.Get(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}

	now := g.now()
	o := &order.Order{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		Code:         types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_PRORATION_ORDER),
		SubscriberID: sub.ID,
		LevelID:      sub.LevelID,
		Gateway:      types.OrderGatewayProration,
		Status:       status,
		Total:        total,
		Currency:     currency,
		Notes:        req.Description,
		Timestamp:    now,
		BaseModel: types.BaseModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := g.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
