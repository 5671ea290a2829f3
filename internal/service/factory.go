package service

import (
	"time"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/audit"
	"github.com/flexprice/playerseats/internal/domain/credit"
	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/sentry"
	webhookPublisher "github.com/flexprice/playerseats/internal/webhook/publisher"
)

// Clock returns the current time. Tests replace it to pin proration to a known instant.
type Clock func() time.Time

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Sentry *sentry.Service

	// Repositories
	SeatPolicyRepo seatpolicy.Repository
	SeatRepo       seat.Repository
	SubscriberRepo subscriber.Repository
	OrderRepo      order.Repository
	CreditRepo     credit.Repository
	AuditRepo      audit.Repository

	// Payment
	Gateway      payment.Gateway
	PeriodSource payment.SubscriptionPeriodSource

	// Publishers
	WebhookPublisher webhookPublisher.WebhookPublisher

	Clock Clock
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	sentry *sentry.Service,
	seatPolicyRepo seatpolicy.Repository,
	seatRepo seat.Repository,
	subscriberRepo subscriber.Repository,
	orderRepo order.Repository,
	creditRepo credit.Repository,
	auditRepo audit.Repository,
	gateway payment.Gateway,
	periodSource payment.SubscriptionPeriodSource,
	webhookPublisher webhookPublisher.WebhookPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		Sentry:           sentry,
		SeatPolicyRepo:   seatPolicyRepo,
		SeatRepo:         seatRepo,
		SubscriberRepo:   subscriberRepo,
		OrderRepo:        orderRepo,
		CreditRepo:       creditRepo,
		AuditRepo:        auditRepo,
		Gateway:          gateway,
		PeriodSource:     periodSource,
		WebhookPublisher: webhookPublisher,
		Clock:            func() time.Time { return time.Now().UTC() },
	}
}

func (p ServiceParams) now() time.Time {
	if p.Clock == nil {
		return time.Now().UTC()
	}
	return p.Clock().UTC()
}
