package webhook

import (
	"context"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/logger"
	pubsubRouter "github.com/flexprice/playerseats/internal/pubsub/router"
	"github.com/flexprice/playerseats/internal/svix"
	"github.com/flexprice/playerseats/internal/webhook/handler"
	"github.com/flexprice/playerseats/internal/webhook/publisher"
)

// WebhookService owns the delivery side of seat events
type WebhookService struct {
	config     *config.Configuration
	publisher  publisher.WebhookPublisher
	handler    handler.Handler
	svixClient *svix.Client
	logger     *logger.Logger
}

func NewWebhookService(
	cfg *config.Configuration,
	publisher publisher.WebhookPublisher,
	h handler.Handler,
	svixClient *svix.Client,
	l *logger.Logger,
) *WebhookService {
	return &WebhookService{
		config:     cfg,
		publisher:  publisher,
		handler:    h,
		svixClient: svixClient,
		logger:     l,
	}
}

// Start registers the delivery handler on the router
func (s *WebhookService) Start(ctx context.Context, router *pubsubRouter.Router) error {
	if !s.config.Webhook.Enabled {
		s.logger.Info("webhook delivery disabled")
		return nil
	}

	if err := s.svixClient.EnsureApplication(ctx); err != nil {
		return err
	}

	s.handler.RegisterHandler(router)
	s.logger.Infow("webhook delivery registered",
		"topic", s.config.Webhook.Topic,
		"svix", s.svixClient.Enabled(),
		"endpoints", len(s.config.Webhook.Endpoints),
	)
	return nil
}

// Stop closes the publisher
func (s *WebhookService) Stop() error {
	if err := s.publisher.Close(); err != nil {
		s.logger.Errorw("failed to close webhook publisher", "error", err)
		return err
	}
	return nil
}
