package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/flexprice/playerseats/internal/domain/seat"
	ierr "github.com/flexprice/playerseats/internal/errors"
)

// InMemorySeatStore implements seat.Repository
type InMemorySeatStore struct {
	*InMemoryStore[*seat.State]
	saveMu  sync.Mutex
	saveErr error
	saves   int
}

func NewInMemorySeatStore() *InMemorySeatStore {
	return &InMemorySeatStore{
		InMemoryStore: NewInMemoryStore[*seat.State](),
	}
}

func seatKey(subscriberID int64) string {
	return strconv.FormatInt(subscriberID, 10)
}

func copySeatState(s *seat.State) *seat.State {
	if s == nil {
		return nil
	}
	c := *s
	if s.LastAdjustmentAt != nil {
		at := *s.LastAdjustmentAt
		c.LastAdjustmentAt = &at
	}
	return &c
}

func (s *InMemorySeatStore) Get(ctx context.Context, subscriberID int64) (*seat.State, error) {
	state, err := s.InMemoryStore.Get(ctx, seatKey(subscriberID))
	if err != nil {
		return nil, err
	}
	return copySeatState(state), nil
}

func (s *InMemorySeatStore) Save(ctx context.Context, state *seat.State) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}

	key := seatKey(state.SubscriberID)
	existing, err := s.InMemoryStore.Get(ctx, key)
	switch {
	case err != nil && state.Version != 0:
		return ierr.NewError("seat state not found").
			WithHint("Seat state was removed concurrently").
			Mark(ierr.ErrVersionConflict)
	case err == nil && existing.Version != state.Version:
		return ierr.NewError("stale seat state").
			WithHintf("Seat state changed concurrently (version %d, expected %d)", existing.Version, state.Version).
			Mark(ierr.ErrVersionConflict)
	}

	state.Version++
	s.InMemoryStore.Upsert(ctx, key, copySeatState(state))
	return nil
}

func (s *InMemorySeatStore) Delete(ctx context.Context, subscriberID int64) error {
	err := s.InMemoryStore.Delete(ctx, seatKey(subscriberID))
	if ierr.IsNotFound(err) {
		return nil
	}
	return err
}

// SetSaveError makes every following Save return err as is until reset with nil
func (s *InMemorySeatStore) SetSaveError(err error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.saveErr = err
}

// SaveCalls is how often Save was attempted
func (s *InMemorySeatStore) SaveCalls() int {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.saves
}

func (s *InMemorySeatStore) Clear() {
	s.InMemoryStore.Clear()
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.saveErr = nil
	s.saves = 0
}
