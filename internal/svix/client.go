package svix

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/flexprice/playerseats/internal/config"
	ierr "github.com/flexprice/playerseats/internal/errors"
	svix "github.com/svix/svix-webhooks/go"
	"github.com/svix/svix-webhooks/go/models"
)

// Client sends seat events to a svix application which fans them out to
// the subscribed listener endpoints
type Client struct {
	client        *svix.Svix
	applicationID string
	enabled       bool
}

// NewClient creates a new Svix client. A disabled config yields a client whose calls are no-ops.
func NewClient(cfg *config.Configuration) (*Client, error) {
	if !cfg.Webhook.Svix.Enabled {
		return &Client{enabled: false}, nil
	}

	var opts *svix.SvixOptions
	if cfg.Webhook.Svix.BaseURL != "" {
		serverURL, err := url.Parse(cfg.Webhook.Svix.BaseURL)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Svix base url is invalid").
				Mark(ierr.ErrValidation)
		}
		opts = &svix.SvixOptions{ServerUrl: serverURL}
	}

	svixClient, err := svix.New(cfg.Webhook.Svix.AuthToken, opts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create svix client").
			Mark(ierr.ErrHTTPClient)
	}

	return &Client{
		client:        svixClient,
		applicationID: cfg.Webhook.Svix.ApplicationID,
		enabled:       true,
	}, nil
}

// Enabled reports whether events are delivered through svix
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// EnsureApplication creates the configured application when it does not exist yet
func (c *Client) EnsureApplication(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	if _, err := c.client.Application.Get(ctx, c.applicationID); err == nil {
		return nil
	}

	uid := c.applicationID
	_, err := c.client.Application.Create(ctx, models.ApplicationIn{
		Name: c.applicationID,
		Uid:  &uid,
	}, &svix.ApplicationCreateOptions{})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to create svix application %s", c.applicationID).
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}

// SendMessage sends one event. The event id doubles as the svix idempotency key
// so redelivered messages are not sent twice.
func (c *Client) SendMessage(ctx context.Context, eventID, eventType string, payload json.RawMessage) error {
	if !c.Enabled() {
		return nil
	}

	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payload, &payloadMap); err != nil {
		return ierr.WithError(err).
			WithHint("Seat event payload must be a json object").
			Mark(ierr.ErrValidation)
	}

	id := eventID
	_, err := c.client.Message.Create(ctx, c.applicationID, models.MessageIn{
		EventId:   &id,
		EventType: eventType,
		Payload:   payloadMap,
	}, &svix.MessageCreateOptions{IdempotencyKey: &id})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to send %s to svix", eventType).
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}
