package main

import (
	"context"
	"net/http"
	"time"

	"github.com/flexprice/playerseats/internal/api"
	v1 "github.com/flexprice/playerseats/internal/api/v1"
	"github.com/flexprice/playerseats/internal/cache"
	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/integration"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
	pubsubRouter "github.com/flexprice/playerseats/internal/pubsub/router"
	"github.com/flexprice/playerseats/internal/repository"
	"github.com/flexprice/playerseats/internal/sentry"
	"github.com/flexprice/playerseats/internal/service"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/validator"
	"github.com/flexprice/playerseats/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// @title Player Seats API
// @version 1.0
// @description Seat based pricing for club memberships
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,
			cache.NewInMemoryCache,
			provideIntegrationFactory,
			provideGateway,
			providePeriodSource,
			pubsubRouter.NewRouter,
		),
		sentry.Module(),
		postgres.Module(),
		repository.Module(),
	)

	// Webhook module (must be initialised before services)
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewSeatService,
			service.NewSeatAdjustmentService,
			service.NewCreditService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			seedDefaultPolicies,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideIntegrationFactory(
	cfg *config.Configuration,
	logger *logger.Logger,
	subscriberRepo subscriber.Repository,
	orderRepo order.Repository,
) *integration.Factory {
	return integration.NewFactory(cfg, logger, subscriberRepo, orderRepo)
}

func provideGateway(f *integration.Factory) payment.Gateway {
	return f.GetGateway()
}

func providePeriodSource(f *integration.Factory) payment.SubscriptionPeriodSource {
	return f.GetPeriodSource()
}

func provideHandlers(
	db *postgres.DB,
	logger *logger.Logger,
	seatService service.SeatService,
	adjustmentService service.SeatAdjustmentService,
	creditService service.CreditService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(db, logger),
		Seat:       v1.NewSeatHandler(seatService, adjustmentService, logger),
		Membership: v1.NewMembershipHandler(seatService, creditService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

// seedDefaultPolicies stores the configured policies for levels that have none yet
func seedDefaultPolicies(lc fx.Lifecycle, cfg *config.Configuration, repo seatpolicy.Repository, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, p := range cfg.Seats.Policies {
				if _, err := repo.Get(ctx, p.LevelID); err == nil {
					continue
				}
				policy, err := toSeatPolicy(p)
				if err != nil {
					return err
				}
				if err := repo.Upsert(ctx, policy); err != nil {
					log.Errorw("failed to seed seat policy", "level_id", policy.LevelID, "error", err)
					return err
				}
				log.Infow("seeded seat policy", "level_id", policy.LevelID)
			}
			return nil
		},
	})
}

func toSeatPolicy(p config.LevelPolicyConfig) (*seatpolicy.SeatPolicy, error) {
	price, err := parseAmount(p.PricePerSeatMonthly)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invalid seat price for level %d", p.LevelID).
			Mark(ierr.ErrValidation)
	}
	billing, err := parseAmount(p.BillingAmount)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invalid billing amount for level %d", p.LevelID).
			Mark(ierr.ErrValidation)
	}

	policy := &seatpolicy.SeatPolicy{
		LevelID:             p.LevelID,
		DefaultSeats:        p.DefaultSeats,
		AllowExtra:          p.AllowExtra,
		PricePerSeatMonthly: price,
		BillingAmount:       billing,
		MaxSeats:            p.MaxSeats,
		ProrationEnabled:    p.ProrationEnabled,
		Features:            types.CSVList(p.Features),
		BaseModel:           types.GetDefaultBaseModel(context.Background()),
	}
	return policy, policy.Validate()
}

func parseAmount(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	webhookService *webhook.WebhookService,
	router *pubsubRouter.Router,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, webhookService, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := webhookService.Start(ctx, router); err != nil {
				return err
			}
			go func() {
				if err := router.Run(context.Background()); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			<-router.Running()
			log.Info("Message router started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping message router...")
			if err := webhookService.Stop(); err != nil {
				log.Errorw("failed to stop webhook service", "error", err)
			}
			return router.Close()
		},
	})
}
