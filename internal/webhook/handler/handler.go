package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/playerseats/internal/config"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/httpclient"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/pubsub"
	pubsubRouter "github.com/flexprice/playerseats/internal/pubsub/router"
	"github.com/flexprice/playerseats/internal/sentry"
	"github.com/flexprice/playerseats/internal/svix"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/webhook/payload"
	goCache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// Handler delivers seat events from the webhook topic to listeners
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

// deliveredTTL outlives every retry of a message
const deliveredTTL = time.Hour

type handler struct {
	pubSub     pubsub.PubSub
	config     *config.Webhook
	client     httpclient.Client
	logger     *logger.Logger
	sentry     *sentry.Service
	svixClient *svix.Client
	// delivered holds event id and target pairs that already succeeded, so a
	// retried message only goes to the targets that failed
	delivered *goCache.Cache
}

func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	client httpclient.Client,
	logger *logger.Logger,
	sentry *sentry.Service,
	svixClient *svix.Client,
) (Handler, error) {
	return &handler{
		pubSub:     pubSub,
		config:     &cfg.Webhook,
		client:     client,
		logger:     logger,
		sentry:     sentry,
		svixClient: svixClient,
		delivered:  goCache.New(deliveredTTL, 10*time.Minute),
	}, nil
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"seat_event_delivery",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

func (h *handler) processMessage(msg *message.Message) error {
	ctx := msg.Context()

	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal webhook event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	ctx = types.SetUserID(ctx, event.UserID)
	ctx = types.SetRequestID(ctx, msg.Metadata.Get("request_id"))

	span, ctx := h.sentry.StartDeliverySpan(ctx, event.EventName, event.Timestamp)
	defer sentry.FinishSpan(span)

	body, err := payload.Build(&event)
	if err != nil {
		h.logger.Errorw("failed to build webhook payload",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return nil
	}

	err = h.deliver(ctx, &event, body)
	if err == nil {
		return nil
	}
	if !pubsubRouter.ShouldRetry(h.logger, err) {
		h.logger.Warnw("dropping undeliverable webhook event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return nil
	}
	return err
}

// deliver sends the event through svix when enabled and to every native endpoint
// that did not opt out of it. Endpoints are called concurrently and the first
// retryable error fails the message. Targets that succeeded on an earlier
// attempt are skipped.
func (h *handler) deliver(ctx context.Context, event *types.WebhookEvent, body []byte) error {
	endpoints := lo.Filter(h.config.Endpoints, func(e config.WebhookEndpoint, _ int) bool {
		return e.Enabled && e.URL != "" && !lo.Contains(e.ExcludedEvents, event.EventName)
	})

	p := pool.New().WithErrors().WithContext(ctx)
	if h.config.DeliveryConcurrency > 0 {
		p = p.WithMaxGoroutines(h.config.DeliveryConcurrency)
	}

	if h.svixClient.Enabled() {
		h.goOnce(p, event, "svix", func(ctx context.Context) error {
			return h.sendSvix(ctx, event)
		})
	}

	for _, endpoint := range endpoints {
		endpoint := endpoint
		h.goOnce(p, event, "endpoint:"+endpoint.Name, func(ctx context.Context) error {
			return h.sendNative(ctx, endpoint, event, body)
		})
	}

	return p.Wait()
}

// goOnce runs send unless the target already received the event
func (h *handler) goOnce(p *pool.ContextPool, event *types.WebhookEvent, target string, send func(ctx context.Context) error) {
	key := event.ID + "|" + target
	if _, done := h.delivered.Get(key); done {
		h.logger.Debugw("skipping webhook target that already received the event",
			"target", target,
			"event_id", event.ID)
		return
	}

	p.Go(func(ctx context.Context) error {
		if err := send(ctx); err != nil {
			return err
		}
		h.delivered.SetDefault(key, struct{}{})
		return nil
	})
}

func (h *handler) sendSvix(ctx context.Context, event *types.WebhookEvent) error {
	if err := h.svixClient.SendMessage(ctx, event.ID, event.EventName, event.Payload); err != nil {
		h.logger.Errorw("failed to send webhook via svix",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return err
	}

	h.logger.Infow("webhook sent via svix",
		"event_id", event.ID,
		"event_name", event.EventName,
	)
	return nil
}

func (h *handler) sendNative(ctx context.Context, endpoint config.WebhookEndpoint, event *types.WebhookEvent, body []byte) error {
	headers := lo.Assign(map[string]string{
		"X-Seat-Event":    event.EventName,
		"X-Seat-Event-Id": event.ID,
	}, endpoint.Headers)

	resp, err := h.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     endpoint.URL,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		h.logger.Errorw("failed to send webhook",
			"error", err,
			"endpoint", endpoint.Name,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return ierr.WithError(err).
			WithHintf("Delivery to %s failed", endpoint.Name).
			Mark(ierr.ErrHTTPClient)
	}

	h.logger.Infow("webhook sent",
		"endpoint", endpoint.Name,
		"event_id", event.ID,
		"event_name", event.EventName,
		"status_code", resp.StatusCode,
	)
	return nil
}
