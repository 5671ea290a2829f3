package testutil

import (
	"context"
	"time"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/audit"
	"github.com/flexprice/playerseats/internal/domain/credit"
	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/sentry"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SeatPolicyRepo seatpolicy.Repository
	SeatRepo       seat.Repository
	SubscriberRepo subscriber.Repository
	OrderRepo      order.Repository
	CreditRepo     credit.Repository
	AuditRepo      audit.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx              context.Context
	stores           Stores
	gateway          *MockGateway
	periodSource     *MockPeriodSource
	webhookPublisher *InMemoryWebhookPublisher
	sentry           *sentry.Service
	logger           *logger.Logger
	config           *config.Configuration
	now              time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Webhook.Enabled = true
	// keep invoice retries fast
	cfg.Payment.InvoiceRetries = 1
	cfg.Payment.InvoiceRetryInterval = time.Millisecond
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.sentry = sentry.NewSentryService(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SeatPolicyRepo: NewInMemorySeatPolicyStore(),
		SeatRepo:       NewInMemorySeatStore(),
		SubscriberRepo: NewInMemorySubscriberStore(),
		OrderRepo:      NewInMemoryOrderStore(),
		CreditRepo:     NewInMemoryCreditStore(),
		AuditRepo:      NewInMemoryAuditStore(),
	}
	s.gateway = NewMockGateway()
	s.periodSource = NewMockPeriodSource()
	s.webhookPublisher = NewInMemoryWebhookPublisher()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.SeatPolicyRepo.(*InMemorySeatPolicyStore).Clear()
	s.stores.SeatRepo.(*InMemorySeatStore).Clear()
	s.stores.SubscriberRepo.(*InMemorySubscriberStore).Clear()
	s.stores.OrderRepo.(*InMemoryOrderStore).Clear()
	s.stores.CreditRepo.(*InMemoryCreditStore).Clear()
	s.stores.AuditRepo.(*InMemoryAuditStore).Clear()
	s.webhookPublisher.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the mocked payment gateway of the current test
func (s *BaseServiceTestSuite) GetGateway() *MockGateway {
	return s.gateway
}

// GetPeriodSource returns the mocked subscription period lookup of the current test
func (s *BaseServiceTestSuite) GetPeriodSource() *MockPeriodSource {
	return s.periodSource
}

// GetWebhookPublisher returns the capturing webhook publisher
func (s *BaseServiceTestSuite) GetWebhookPublisher() *InMemoryWebhookPublisher {
	return s.webhookPublisher
}

// GetSentry returns a disabled sentry service
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the pinned test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// SetNow moves the pinned test time
func (s *BaseServiceTestSuite) SetNow(now time.Time) {
	s.now = now.UTC()
}

// Clock returns a clock reading the pinned test time, following later SetNow calls
func (s *BaseServiceTestSuite) Clock() func() time.Time {
	return func() time.Time { return s.now }
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
