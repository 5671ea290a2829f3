package webhook

import (
	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/httpclient"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/pubsub"
	"github.com/flexprice/playerseats/internal/pubsub/memory"
	"github.com/flexprice/playerseats/internal/svix"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/webhook/handler"
	"github.com/flexprice/playerseats/internal/webhook/publisher"
	"go.uber.org/fx"
)

// Module provides all webhook-related dependencies
var Module = fx.Options(
	fx.Provide(
		providePubSub,
		provideHTTPClient,
		svix.NewClient,
	),

	fx.Provide(
		publisher.NewPublisher,
		handler.NewHandler,
		NewWebhookService,
	),
)

func providePubSub(cfg *config.Configuration, logger *logger.Logger) pubsub.PubSub {
	switch cfg.Webhook.PubSub {
	case types.MemoryPubSub, "":
		return memory.NewPubSub(cfg, logger)
	}
	logger.Warnw("unsupported pubsub type, using memory", "pubsub", cfg.Webhook.PubSub)
	return memory.NewPubSub(cfg, logger)
}

func provideHTTPClient(logger *logger.Logger) httpclient.Client {
	return httpclient.NewDefaultClient(httpclient.DefaultConfig(), logger)
}
