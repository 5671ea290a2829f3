package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/testutil"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type FactorySuite struct {
	suite.Suite
	ctx       context.Context
	orders    *testutil.InMemoryOrderStore
	gateway   payment.Gateway
	factory   *Factory
	customers *testutil.InMemorySubscriberStore
}

func TestFactory(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	cfg.Payment.InvoiceURLTemplate = "https://club.example.com/invoice/%s"
	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.orders = testutil.NewInMemoryOrderStore()
	s.customers = testutil.NewInMemorySubscriberStore()
	s.NoError(s.customers.Upsert(s.ctx, &subscriber.Subscriber{
		ID:               7,
		LevelID:          3,
		StripeCustomerID: "cus_123",
	}))

	// stripe is disabled in the default config, so every member is billed offline
	s.factory = NewFactory(cfg, log, s.customers, s.orders)
	s.gateway = s.factory.GetGateway()
}

func (s *FactorySuite) request(amount int64) *payment.Request {
	return &payment.Request{
		SubscriberID:   7,
		Amount:         decimal.NewFromInt(amount),
		Currency:       "EUR",
		Description:    "Player account adjustment: 2 to 5 accounts (182 days remaining)",
		IdempotencyKey: "seat_charge_abc",
	}
}

func (s *FactorySuite) TestOfflineInvoiceRecordsProrationOrder() {
	doc, err := s.gateway.CreatePayableDocument(s.ctx, s.request(27))
	s.Require().NoError(err)
	s.True(strings.HasPrefix(doc.Ref, types.SHORT_ID_PREFIX_PRORATION_ORDER))
	s.Equal("https://club.example.com/invoice/"+doc.Ref, doc.URL)
	s.Equal(types.PayableDocumentStatusOpen, doc.Status)
	s.NotNil(doc.DueAt)

	orders, err := s.orders.List(s.ctx, &order.Filter{SubscriberID: 7})
	s.NoError(err)
	s.Require().Len(orders, 1)
	s.Equal(types.OrderGatewayProration, orders[0].Gateway)
	s.Equal(types.OrderStatusPending, orders[0].Status)
	s.Equal(int64(3), orders[0].LevelID)
	s.True(orders[0].Total.Equal(decimal.NewFromInt(27)))
	s.False(orders[0].IsPaymentEvidence())
}

func (s *FactorySuite) TestOfflineCreditRecordsNegativeOrder() {
	result, err := s.gateway.RecordCredit(s.ctx, s.request(27))
	s.Require().NoError(err)
	s.NotEmpty(result.Ref)

	orders, err := s.orders.List(s.ctx, &order.Filter{SubscriberID: 7})
	s.NoError(err)
	s.Require().Len(orders, 1)
	s.True(orders[0].Total.Equal(decimal.NewFromInt(-27)))
	s.Equal(types.OrderStatusSuccess, orders[0].Status)
}

func (s *FactorySuite) TestOfflineCannotChargeNow() {
	_, err := s.gateway.ChargeNow(s.ctx, s.request(27))
	s.Error(err)
	s.True(ierr.Is(err, seat.ErrNoPaymentMethod))
	s.Equal(types.AdjustmentErrorNoPaymentMethod, payment.ErrorKind(err))
}

func (s *FactorySuite) TestUnknownSubscriber() {
	req := s.request(27)
	req.SubscriberID = 99
	_, err := s.gateway.CreatePayableDocument(s.ctx, req)
	s.True(ierr.IsNotFound(err))
}

func (s *FactorySuite) TestPeriodSourceWithoutStripe() {
	_, err := s.factory.GetPeriodSource().CurrentPeriodEnd(s.ctx, "sub_123")
	s.True(ierr.IsNotFound(err))
}

func (s *FactorySuite) TestOfflineRecurringSeatsAreNoOp() {
	updater, ok := s.gateway.(payment.RecurringSeatUpdater)
	s.Require().True(ok)

	err := updater.UpdateRecurringSeats(s.ctx, &payment.RecurringSeatsRequest{
		SubscriberID:   7,
		SubscriptionID: "sub_123",
		TotalSeats:     5,
		ExtraSeats:     3,
		IdempotencyKey: "seat_renewal_abc",
	})
	s.NoError(err)

	orders, err := s.orders.List(s.ctx, &order.Filter{SubscriberID: 7})
	s.NoError(err)
	s.Empty(orders)
}
