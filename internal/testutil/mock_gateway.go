package testutil

import (
	"context"
	"time"

	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a testify mock of payment.Gateway
type MockGateway struct {
	mock.Mock
}

var _ payment.Gateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) ChargeNow(ctx context.Context, req *payment.Request) (*payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

func (m *MockGateway) CreatePayableDocument(ctx context.Context, req *payment.Request) (*payment.PayableDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PayableDocument), args.Error(1)
}

func (m *MockGateway) RecordCredit(ctx context.Context, req *payment.Request) (*payment.CreditResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CreditResult), args.Error(1)
}

// MockRecurringGateway is a MockGateway that also bills extra seats on a recurring subscription
type MockRecurringGateway struct {
	MockGateway
}

var _ payment.RecurringSeatUpdater = (*MockRecurringGateway)(nil)

func NewMockRecurringGateway() *MockRecurringGateway {
	return &MockRecurringGateway{}
}

func (m *MockRecurringGateway) UpdateRecurringSeats(ctx context.Context, req *payment.RecurringSeatsRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockPeriodSource is a testify mock of payment.SubscriptionPeriodSource
type MockPeriodSource struct {
	mock.Mock
}

var _ payment.SubscriptionPeriodSource = (*MockPeriodSource)(nil)

func NewMockPeriodSource() *MockPeriodSource {
	return &MockPeriodSource{}
}

func (m *MockPeriodSource) CurrentPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(time.Time), args.Error(1)
}
