package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/sentry"
	"github.com/flexprice/playerseats/internal/svix"
	"github.com/flexprice/playerseats/internal/testutil"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/webhook/payload"
	"github.com/flexprice/playerseats/internal/webhook/publisher"
	"github.com/stretchr/testify/suite"
)

type HandlerSuite struct {
	suite.Suite
	cfg       *config.Configuration
	pubSub    *testutil.InMemoryPubSub
	client    *testutil.MockHTTPClient
	publisher publisher.WebhookPublisher
	handler   *handler
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.cfg = config.GetDefaultConfig()
	s.cfg.Webhook.Enabled = true
	s.cfg.Webhook.Endpoints = []config.WebhookEndpoint{
		{
			Name:    "club_portal",
			URL:     "https://portal.example.com/hooks/seats",
			Enabled: true,
			Headers: map[string]string{"Authorization": "Bearer portal"},
		},
		{
			Name:           "crm",
			URL:            "https://crm.example.com/hooks/seats",
			Enabled:        true,
			ExcludedEvents: []string{types.WebhookEventSeatsReset},
		},
		{
			Name:    "disabled",
			URL:     "https://disabled.example.com/hooks/seats",
			Enabled: false,
		},
	}

	log, err := logger.NewLogger(s.cfg)
	s.Require().NoError(err)
	svixClient, err := svix.NewClient(s.cfg)
	s.Require().NoError(err)

	s.pubSub = testutil.NewInMemoryPubSub()
	s.client = testutil.NewMockHTTPClient()

	s.publisher, err = publisher.NewPublisher(s.pubSub, s.cfg, log)
	s.Require().NoError(err)

	h, err := NewHandler(s.pubSub, s.cfg, s.client, log, sentry.NewSentryService(s.cfg, log), svixClient)
	s.Require().NoError(err)
	s.handler = h.(*handler)
}

func (s *HandlerSuite) publish(eventName string, data any) *message.Message {
	event, err := payload.NewEvent(eventName, "42", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), data)
	s.Require().NoError(err)

	ctx := types.SetRequestID(context.Background(), "req-1")
	s.Require().NoError(s.publisher.PublishWebhook(ctx, event))

	msgs := s.pubSub.GetMessages(s.cfg.Webhook.Topic)
	s.Require().NotEmpty(msgs)
	msg := msgs[len(msgs)-1]
	s.Equal(eventName, msg.Metadata.Get("event_name"))
	s.Equal("req-1", msg.Metadata.Get("request_id"))
	return msg
}

func (s *HandlerSuite) TestDeliversToEnabledEndpoints() {
	s.client.RegisterResponse("/hooks/seats", testutil.MockResponse{StatusCode: http.StatusOK})

	msg := s.publish(types.WebhookEventSeatsUpdated, payload.SeatsUpdated{SubscriberID: 42, OldSeats: 2, NewSeats: 5})
	s.NoError(s.handler.processMessage(msg))

	s.Len(s.client.Requests(), 2)
	s.Empty(s.client.RequestsTo("disabled.example.com/hooks/seats"))

	portal := s.client.RequestsTo("portal.example.com/hooks/seats")
	s.Require().Len(portal, 1)
	s.Equal(http.MethodPost, portal[0].Method)
	s.Equal("Bearer portal", portal[0].Headers["Authorization"])
	s.Equal(types.WebhookEventSeatsUpdated, portal[0].Headers["X-Seat-Event"])

	var envelope payload.Envelope
	s.NoError(json.Unmarshal(portal[0].Body, &envelope))
	s.Equal(types.WebhookEventSeatsUpdated, envelope.EventType)
	s.Equal(msg.UUID, envelope.EventID)

	var data payload.SeatsUpdated
	s.NoError(json.Unmarshal(envelope.Data, &data))
	s.Equal(5, data.NewSeats)
}

func (s *HandlerSuite) TestExcludedEventsAreSkipped() {
	s.client.RegisterResponse("/hooks/seats", testutil.MockResponse{StatusCode: http.StatusOK})

	msg := s.publish(types.WebhookEventSeatsReset, payload.SeatsReset{SubscriberID: 42, Seats: 2})
	s.NoError(s.handler.processMessage(msg))

	s.Len(s.client.RequestsTo("portal.example.com/hooks/seats"), 1)
	s.Empty(s.client.RequestsTo("crm.example.com/hooks/seats"))
}

func (s *HandlerSuite) TestServerErrorIsRetried() {
	s.client.RegisterResponse("portal.example.com/hooks/seats", testutil.MockResponse{StatusCode: http.StatusOK})
	s.client.RegisterResponse("crm.example.com/hooks/seats", testutil.MockResponse{StatusCode: http.StatusServiceUnavailable})

	msg := s.publish(types.WebhookEventSeatsUpdated, payload.SeatsUpdated{SubscriberID: 42})
	s.Error(s.handler.processMessage(msg))
}

func (s *HandlerSuite) TestRetryOnlyReachesFailedEndpoints() {
	s.client.RegisterResponse("portal.example.com/hooks/seats", testutil.MockResponse{StatusCode: http.StatusOK})
	s.client.RegisterResponse("crm.example.com/hooks/seats", testutil.MockResponse{StatusCode: http.StatusServiceUnavailable})

	msg := s.publish(types.WebhookEventSeatsUpdated, payload.SeatsUpdated{SubscriberID: 42})
	s.Error(s.handler.processMessage(msg))

	s.client.RegisterResponse("crm.example.com/hooks/seats", testutil.MockResponse{StatusCode: http.StatusOK})
	s.NoError(s.handler.processMessage(msg))

	s.Len(s.client.RequestsTo("portal.example.com/hooks/seats"), 1)
	crm := s.client.RequestsTo("crm.example.com/hooks/seats")
	s.Require().Len(crm, 2)
	s.Equal(msg.UUID, crm[1].Headers["X-Seat-Event-Id"])

	// a third delivery of the same message sends nothing
	s.NoError(s.handler.processMessage(msg))
	s.Len(s.client.Requests(), 3)
}

func (s *HandlerSuite) TestListenerRejectionIsDropped() {
	s.client.RegisterResponse("portal.example.com/hooks/seats", testutil.MockResponse{StatusCode: http.StatusOK})
	s.client.RegisterResponse("crm.example.com/hooks/seats", testutil.MockResponse{StatusCode: http.StatusBadRequest})

	msg := s.publish(types.WebhookEventSeatsUpdated, payload.SeatsUpdated{SubscriberID: 42})
	s.NoError(s.handler.processMessage(msg))
}

func (s *HandlerSuite) TestMalformedMessageIsDropped() {
	s.NoError(s.handler.processMessage(message.NewMessage("broken", []byte("{not json"))))
	s.Empty(s.client.Requests())
}

func (s *HandlerSuite) TestDisabledPublisherDropsEvents() {
	s.cfg.Webhook.Enabled = false
	event, err := payload.NewEvent(types.WebhookEventSeatsUpdated, "42", time.Now(), payload.SeatsUpdated{})
	s.Require().NoError(err)

	s.NoError(s.publisher.PublishWebhook(context.Background(), event))
	s.Empty(s.pubSub.GetMessages(s.cfg.Webhook.Topic))
}
