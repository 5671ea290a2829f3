package service

import (
	"github.com/flexprice/playerseats/internal/testutil"
)

// newTestServiceParams wires the services to the in-memory stores and mocks of the suite
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		Sentry:           s.GetSentry(),
		SeatPolicyRepo:   stores.SeatPolicyRepo,
		SeatRepo:         stores.SeatRepo,
		SubscriberRepo:   stores.SubscriberRepo,
		OrderRepo:        stores.OrderRepo,
		CreditRepo:       stores.CreditRepo,
		AuditRepo:        stores.AuditRepo,
		Gateway:          s.GetGateway(),
		PeriodSource:     s.GetPeriodSource(),
		WebhookPublisher: s.GetWebhookPublisher(),
		Clock:            s.Clock(),
	}
}
