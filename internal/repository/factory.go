package repository

import (
	"github.com/flexprice/playerseats/internal/cache"
	"github.com/flexprice/playerseats/internal/domain/audit"
	"github.com/flexprice/playerseats/internal/domain/credit"
	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
	postgresRepo "github.com/flexprice/playerseats/internal/repository/postgres"
	"go.uber.org/fx"
)

// Module provides every repository backed by postgres
func Module() fx.Option {
	return fx.Provide(
		NewSeatPolicyRepository,
		NewSeatRepository,
		NewSubscriberRepository,
		NewOrderRepository,
		NewCreditRepository,
		NewAuditRepository,
	)
}

// NewSeatPolicyRepository returns the policy store behind the in-process cache
func NewSeatPolicyRepository(db *postgres.DB, c *cache.InMemoryCache, logger *logger.Logger) seatpolicy.Repository {
	return cache.NewSeatPolicyRepository(postgresRepo.NewSeatPolicyRepository(db, logger), c, logger)
}

func NewSeatRepository(db *postgres.DB, logger *logger.Logger) seat.Repository {
	return postgresRepo.NewSeatRepository(db, logger)
}

func NewSubscriberRepository(db *postgres.DB, logger *logger.Logger) subscriber.Repository {
	return postgresRepo.NewSubscriberRepository(db, logger)
}

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return postgresRepo.NewOrderRepository(db, logger)
}

func NewCreditRepository(db *postgres.DB, logger *logger.Logger) credit.Repository {
	return postgresRepo.NewCreditRepository(db, logger)
}

func NewAuditRepository(db *postgres.DB, logger *logger.Logger) audit.Repository {
	return postgresRepo.NewAuditRepository(db, logger)
}
