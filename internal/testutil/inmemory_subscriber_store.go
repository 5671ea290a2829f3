package testutil

import (
	"context"
	"strconv"

	"github.com/flexprice/playerseats/internal/domain/subscriber"
)

// InMemorySubscriberStore implements subscriber.Repository
type InMemorySubscriberStore struct {
	*InMemoryStore[*subscriber.Subscriber]
}

func NewInMemorySubscriberStore() *InMemorySubscriberStore {
	return &InMemorySubscriberStore{
		InMemoryStore: NewInMemoryStore[*subscriber.Subscriber](),
	}
}

func copySubscriber(s *subscriber.Subscriber) *subscriber.Subscriber {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func (s *InMemorySubscriberStore) Get(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	sub, err := s.InMemoryStore.Get(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	return copySubscriber(sub), nil
}

func (s *InMemorySubscriberStore) Upsert(ctx context.Context, sub *subscriber.Subscriber) error {
	s.InMemoryStore.Upsert(ctx, strconv.FormatInt(sub.ID, 10), copySubscriber(sub))
	return nil
}

func (s *InMemorySubscriberStore) UpdateLevel(ctx context.Context, id int64, levelID int64) error {
	sub, err := s.InMemoryStore.Get(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return err
	}
	updated := copySubscriber(sub)
	updated.LevelID = levelID
	return s.InMemoryStore.Update(ctx, strconv.FormatInt(id, 10), updated)
}
