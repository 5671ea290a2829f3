package cache

import (
	"context"
	"testing"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SeatPolicyCacheSuite struct {
	suite.Suite
	ctx   context.Context
	store *testutil.InMemorySeatPolicyStore
	cache *InMemoryCache
	repo  *SeatPolicyRepository
}

func TestSeatPolicyCache(t *testing.T) {
	suite.Run(t, new(SeatPolicyCacheSuite))
}

func (s *SeatPolicyCacheSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = true
	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.store = testutil.NewInMemorySeatPolicyStore()
	s.cache = NewInMemoryCache(cfg)
	s.repo = NewSeatPolicyRepository(s.store, s.cache, log)

	s.Require().NoError(s.store.Upsert(s.ctx, &seatpolicy.SeatPolicy{
		LevelID:             3,
		DefaultSeats:        2,
		AllowExtra:          true,
		PricePerSeatMonthly: decimal.NewFromFloat(1.5),
		MaxSeats:            10,
	}))
}

func (s *SeatPolicyCacheSuite) TestGetIsServedFromCache() {
	p, err := s.repo.Get(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(2, p.DefaultSeats)

	// the backing row changes without going through the cached repository
	s.Require().NoError(s.store.Upsert(s.ctx, &seatpolicy.SeatPolicy{LevelID: 3, DefaultSeats: 5}))

	p, err = s.repo.Get(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(2, p.DefaultSeats)
}

func (s *SeatPolicyCacheSuite) TestCachedCopyIsNotShared() {
	p, err := s.repo.Get(s.ctx, 3)
	s.Require().NoError(err)
	p.DefaultSeats = 9

	p, err = s.repo.Get(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(2, p.DefaultSeats)
}

func (s *SeatPolicyCacheSuite) TestUpsertInvalidates() {
	_, err := s.repo.Get(s.ctx, 3)
	s.Require().NoError(err)
	_, err = s.repo.List(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Upsert(s.ctx, &seatpolicy.SeatPolicy{LevelID: 3, DefaultSeats: 4, MaxSeats: 8}))

	p, err := s.repo.Get(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(4, p.DefaultSeats)

	policies, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(policies, 1)
	s.Equal(8, policies[0].MaxSeats)
}

func (s *SeatPolicyCacheSuite) TestDeleteInvalidates() {
	_, err := s.repo.Get(s.ctx, 3)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(s.ctx, 3))

	_, err = s.repo.Get(s.ctx, 3)
	s.True(ierr.IsNotFound(err))
}

func (s *SeatPolicyCacheSuite) TestDisabledCacheReadsThrough() {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = false
	disabled := NewInMemoryCache(cfg)

	disabled.Set(s.ctx, "k", 1, 0)
	_, ok := disabled.Get(s.ctx, "k")
	s.False(ok)
}

func (s *SeatPolicyCacheSuite) TestDeleteByPrefix() {
	s.cache.Set(s.ctx, SeatPolicyKey(1), 1, 0)
	s.cache.Set(s.ctx, SeatPolicyKey(2), 2, 0)
	s.cache.Set(s.ctx, PrefixSeatPolicyList, 3, 0)

	s.cache.DeleteByPrefix(s.ctx, PrefixSeatPolicy)

	_, ok := s.cache.Get(s.ctx, SeatPolicyKey(1))
	s.False(ok)
	_, ok = s.cache.Get(s.ctx, PrefixSeatPolicyList)
	s.True(ok)
}
