package testutil

import (
	"context"
	"strconv"

	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
)

// InMemorySeatPolicyStore implements seatpolicy.Repository
type InMemorySeatPolicyStore struct {
	*InMemoryStore[*seatpolicy.SeatPolicy]
}

func NewInMemorySeatPolicyStore() *InMemorySeatPolicyStore {
	return &InMemorySeatPolicyStore{
		InMemoryStore: NewInMemoryStore[*seatpolicy.SeatPolicy](),
	}
}

func copySeatPolicy(p *seatpolicy.SeatPolicy) *seatpolicy.SeatPolicy {
	if p == nil {
		return nil
	}
	c := *p
	c.Features = append(types.CSVList{}, p.Features...)
	return &c
}

func (s *InMemorySeatPolicyStore) Get(ctx context.Context, levelID int64) (*seatpolicy.SeatPolicy, error) {
	p, err := s.InMemoryStore.Get(ctx, strconv.FormatInt(levelID, 10))
	if err != nil {
		return nil, err
	}
	return copySeatPolicy(p), nil
}

func (s *InMemorySeatPolicyStore) List(ctx context.Context) ([]*seatpolicy.SeatPolicy, error) {
	items, err := s.InMemoryStore.List(ctx, nil, nil, func(i, j *seatpolicy.SeatPolicy) bool {
		return i.LevelID < j.LevelID
	})
	if err != nil {
		return nil, err
	}
	result := make([]*seatpolicy.SeatPolicy, 0, len(items))
	for _, p := range items {
		result = append(result, copySeatPolicy(p))
	}
	return result, nil
}

func (s *InMemorySeatPolicyStore) Upsert(ctx context.Context, p *seatpolicy.SeatPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.InMemoryStore.Upsert(ctx, strconv.FormatInt(p.LevelID, 10), copySeatPolicy(p))
	return nil
}

func (s *InMemorySeatPolicyStore) Delete(ctx context.Context, levelID int64) error {
	err := s.InMemoryStore.Delete(ctx, strconv.FormatInt(levelID, 10))
	if ierr.IsNotFound(err) {
		return nil
	}
	return err
}
