package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/playerseats/internal/domain/audit"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
)

// InMemoryAuditStore implements audit.Repository
type InMemoryAuditStore struct {
	*InMemoryStore[*audit.Entry]
	errMu     sync.Mutex
	appendErr error
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{
		InMemoryStore: NewInMemoryStore[*audit.Entry](),
	}
}

func entriesOf(subscriberID int64) FilterFunc[*audit.Entry] {
	return func(_ context.Context, e *audit.Entry, _ interface{}) bool {
		return e.SubscriberID == subscriberID
	}
}

func newestEntryFirst(i, j *audit.Entry) bool {
	if i.Timestamp.Equal(j.Timestamp) {
		return i.ID > j.ID
	}
	return i.Timestamp.After(j.Timestamp)
}

func (s *InMemoryAuditStore) Append(ctx context.Context, entry *audit.Entry, limit int) error {
	s.errMu.Lock()
	err := s.appendErr
	s.errMu.Unlock()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to append audit entry").
			Mark(ierr.ErrDatabase)
	}

	c := *entry
	if err := s.InMemoryStore.Create(ctx, entry.ID, &c); err != nil {
		return err
	}
	if limit <= 0 {
		return nil
	}

	entries, err := s.InMemoryStore.List(ctx, nil, entriesOf(entry.SubscriberID), newestEntryFirst)
	if err != nil {
		return err
	}
	for _, old := range entries[min(limit, len(entries)):] {
		if err := s.InMemoryStore.Delete(ctx, old.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryAuditStore) List(ctx context.Context, subscriberID int64, filter types.ListFilter) ([]*audit.Entry, error) {
	items, err := s.InMemoryStore.List(ctx, filter, entriesOf(subscriberID), newestEntryFirst)
	if err != nil {
		return nil, err
	}
	result := make([]*audit.Entry, 0, len(items))
	for _, e := range items {
		c := *e
		result = append(result, &c)
	}
	return result, nil
}

func (s *InMemoryAuditStore) Count(ctx context.Context, subscriberID int64) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, entriesOf(subscriberID))
}

// SetAppendError makes every following Append fail with err until reset with nil
func (s *InMemoryAuditStore) SetAppendError(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.appendErr = err
}

func (s *InMemoryAuditStore) Clear() {
	s.InMemoryStore.Clear()
	s.SetAppendError(nil)
}
