package config

import (
	"time"

	"github.com/flexprice/playerseats/internal/types"
)

// Webhook represents the configuration for delivering seat events to listeners
type Webhook struct {
	Enabled bool             `mapstructure:"enabled"`
	Topic   string           `mapstructure:"topic"`
	PubSub  types.PubSubType `mapstructure:"pubsub"`

	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`

	// DeliveryConcurrency bounds how many endpoints one event is sent to in parallel
	DeliveryConcurrency int `mapstructure:"delivery_concurrency"`

	Endpoints []WebhookEndpoint `mapstructure:"endpoints"`
	Svix      SvixConfig        `mapstructure:"svix"`
}

// WebhookEndpoint is a native listener such as the mailer or analytics collector
type WebhookEndpoint struct {
	Name           string            `mapstructure:"name"`
	URL            string            `mapstructure:"url"`
	Headers        map[string]string `mapstructure:"headers"`
	Enabled        bool              `mapstructure:"enabled"`
	ExcludedEvents []string          `mapstructure:"excluded_events"`
}

type SvixConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"auth_token"`
	BaseURL   string `mapstructure:"base_url"`
	// ApplicationID is the svix application receiving every seat event
	ApplicationID string `mapstructure:"application_id"`
}
