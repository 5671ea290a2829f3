package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/pubsub"
	"github.com/flexprice/playerseats/internal/types"
)

// PubSub carries seat events inside the process on watermill's gochannel
type PubSub struct {
	channel *gochannel.GoChannel
	topic   string
	logger  *logger.Logger
}

// NewPubSub creates a new memory-based pubsub
func NewPubSub(cfg *config.Configuration, logger *logger.Logger) pubsub.PubSub {
	channel := gochannel.NewGoChannel(
		gochannel.Config{
			// events published before the router subscribes are replayed
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: false,
			OutputChannelBuffer:            100,
		},
		watermill.NewStdLogger(cfg.Logging.Level == types.LogLevelDebug, false),
	)

	return &PubSub{
		channel: channel,
		topic:   cfg.Webhook.Topic,
		logger:  logger,
	}
}

func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	if err := p.channel.Publish(topic, msg); err != nil {
		p.logger.Errorw("failed to publish to memory pubsub", "error", err, "topic", topic, "message_uuid", msg.UUID)
		return err
	}
	return nil
}

func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.channel.Subscribe(ctx, topic)
}

// Close is a no-op. The channel lives as long as the process and is shared
// by the publisher and the router.
func (p *PubSub) Close() error {
	return nil
}
