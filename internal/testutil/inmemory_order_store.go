package testutil

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/order"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/samber/lo"
)

// InMemoryOrderStore implements order.Repository
type InMemoryOrderStore struct {
	*InMemoryStore[*order.Order]
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore[*order.Order](),
	}
}

func copyOrder(o *order.Order) *order.Order {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

func orderFilterFn(ctx context.Context, o *order.Order, filter interface{}) bool {
	f, ok := filter.(*order.Filter)
	if !ok || f == nil {
		return true
	}
	if f.SubscriberID != 0 && o.SubscriberID != f.SubscriberID {
		return false
	}
	if f.LevelID != 0 && o.LevelID != f.LevelID {
		return false
	}
	if lo.Contains(f.ExcludeGateways, o.Gateway) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, o.Status) {
		return false
	}
	return true
}

func newestOrderFirst(i, j *order.Order) bool {
	if i.Timestamp.Equal(j.Timestamp) {
		return i.ID > j.ID
	}
	return i.Timestamp.After(j.Timestamp)
}

func (s *InMemoryOrderStore) Create(ctx context.Context, o *order.Order) error {
	return s.InMemoryStore.Create(ctx, o.ID, copyOrder(o))
}

func (s *InMemoryOrderStore) List(ctx context.Context, filter *order.Filter) ([]*order.Order, error) {
	items, err := s.InMemoryStore.List(ctx, filter, orderFilterFn, newestOrderFirst)
	if err != nil {
		return nil, err
	}
	if filter != nil && filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return lo.Map(items, func(o *order.Order, _ int) *order.Order { return copyOrder(o) }), nil
}

func (s *InMemoryOrderStore) GetLatest(ctx context.Context, filter *order.Filter) (*order.Order, error) {
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewError("no matching order").
			WithHint("Subscriber has no matching orders").
			Mark(ierr.ErrNotFound)
	}
	return items[0], nil
}
