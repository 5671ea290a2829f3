package api

import (
	v1 "github.com/flexprice/playerseats/internal/api/v1"
	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/rest/middleware"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Seat       *v1.SeatHandler
	Membership *v1.MembershipHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(cfg),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(logger),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.AuthenticateMiddleware(cfg, logger), middleware.SentryScopeMiddleware)
	registerV1Routes(v1Group, handlers, cfg)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers, cfg *config.Configuration) {
	limited := middleware.RateLimitMiddleware(cfg)

	subscribers := router.Group("/subscribers/:id", middleware.RequireOwnSubscriber)
	{
		subscribers.GET("/seats", handlers.Seat.GetSeats)
		subscribers.POST("/seats/preview", handlers.Seat.PreviewSeats)
		subscribers.PUT("/seats", limited, handlers.Seat.AdjustSeats)
		subscribers.GET("/seats/history", handlers.Seat.ListHistory)
		subscribers.GET("/features", handlers.Seat.GetFeatures)
		subscribers.GET("/credits", handlers.Membership.GetCredits)
		subscribers.POST("/checkout/quote", handlers.Membership.QuoteSubscriberCheckout)
		subscribers.POST("/membership", middleware.RequireAdmin, limited, handlers.Membership.ChangeMembership)
	}

	checkout := router.Group("/checkout")
	{
		checkout.POST("/quote", handlers.Membership.QuoteCheckout)
	}
}
