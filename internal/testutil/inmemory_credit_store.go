package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/playerseats/internal/domain/credit"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/samber/lo"
)

// InMemoryCreditStore implements credit.Repository
type InMemoryCreditStore struct {
	*InMemoryStore[*credit.PendingCredit]
	errMu     sync.Mutex
	createErr error
}

func NewInMemoryCreditStore() *InMemoryCreditStore {
	return &InMemoryCreditStore{
		InMemoryStore: NewInMemoryStore[*credit.PendingCredit](),
	}
}

func copyCredit(c *credit.PendingCredit) *credit.PendingCredit {
	if c == nil {
		return nil
	}
	cp := *c
	if c.AppliedAt != nil {
		at := *c.AppliedAt
		cp.AppliedAt = &at
	}
	return &cp
}

func availableCreditsOf(subscriberID int64) FilterFunc[*credit.PendingCredit] {
	return func(_ context.Context, c *credit.PendingCredit, _ interface{}) bool {
		return c.SubscriberID == subscriberID && c.Status == types.CreditStatusAvailable
	}
}

func oldestCreditFirst(i, j *credit.PendingCredit) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID < j.ID
	}
	return i.CreatedAt.Before(j.CreatedAt)
}

func (s *InMemoryCreditStore) Create(ctx context.Context, c *credit.PendingCredit) error {
	s.errMu.Lock()
	err := s.createErr
	s.errMu.Unlock()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to store pending credit").
			Mark(ierr.ErrDatabase)
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyCredit(c))
}

func (s *InMemoryCreditStore) ListAvailable(ctx context.Context, subscriberID int64) ([]*credit.PendingCredit, error) {
	items, err := s.InMemoryStore.List(ctx, nil, availableCreditsOf(subscriberID), oldestCreditFirst)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *credit.PendingCredit, _ int) *credit.PendingCredit { return copyCredit(c) }), nil
}

func (s *InMemoryCreditStore) Update(ctx context.Context, c *credit.PendingCredit) error {
	return s.InMemoryStore.Update(ctx, c.ID, copyCredit(c))
}

func (s *InMemoryCreditStore) VoidAvailable(ctx context.Context, subscriberID int64) (int, error) {
	items, err := s.InMemoryStore.List(ctx, nil, availableCreditsOf(subscriberID), nil)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for _, c := range items {
		voided := copyCredit(c)
		voided.Status = types.CreditStatusVoided
		voided.UpdatedAt = now
		if err := s.InMemoryStore.Update(ctx, c.ID, voided); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

// SetCreateError makes every following Create fail with err until reset with nil
func (s *InMemoryCreditStore) SetCreateError(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.createErr = err
}

// All returns every stored credit regardless of status
func (s *InMemoryCreditStore) All(ctx context.Context) []*credit.PendingCredit {
	items, _ := s.InMemoryStore.List(ctx, nil, nil, oldestCreditFirst)
	return items
}

func (s *InMemoryCreditStore) Clear() {
	s.InMemoryStore.Clear()
	s.SetCreateError(nil)
}
