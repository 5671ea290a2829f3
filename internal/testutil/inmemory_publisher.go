package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/playerseats/internal/types"
	webhookPublisher "github.com/flexprice/playerseats/internal/webhook/publisher"
	"github.com/samber/lo"
)

// InMemoryWebhookPublisher captures published seat events for assertions
type InMemoryWebhookPublisher struct {
	mu         sync.RWMutex
	events     []*types.WebhookEvent
	publishErr error
}

var _ webhookPublisher.WebhookPublisher = (*InMemoryWebhookPublisher)(nil)

func NewInMemoryWebhookPublisher() *InMemoryWebhookPublisher {
	return &InMemoryWebhookPublisher{}
}

func (p *InMemoryWebhookPublisher) PublishWebhook(ctx context.Context, event *types.WebhookEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryWebhookPublisher) Close() error {
	return nil
}

// SetPublishError makes every following publish fail with err until reset with nil
func (p *InMemoryWebhookPublisher) SetPublishError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publishErr = err
}

// GetEvents returns all published events in publish order
func (p *InMemoryWebhookPublisher) GetEvents() []*types.WebhookEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.WebhookEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventsNamed returns the published events with the given name
func (p *InMemoryWebhookPublisher) EventsNamed(name string) []*types.WebhookEvent {
	return lo.Filter(p.GetEvents(), func(e *types.WebhookEvent, _ int) bool {
		return e.EventName == name
	})
}

func (p *InMemoryWebhookPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
	p.publishErr = nil
}
