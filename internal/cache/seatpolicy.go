package cache

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/logger"
)

// SeatPolicyRepository serves policy reads from the cache. Writes go to the
// wrapped repository first and then invalidate.
type SeatPolicyRepository struct {
	inner  seatpolicy.Repository
	cache  Cache
	logger *logger.Logger
}

var _ seatpolicy.Repository = (*SeatPolicyRepository)(nil)

func NewSeatPolicyRepository(inner seatpolicy.Repository, cache Cache, logger *logger.Logger) *SeatPolicyRepository {
	return &SeatPolicyRepository{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}
}

func (r *SeatPolicyRepository) Get(ctx context.Context, levelID int64) (*seatpolicy.SeatPolicy, error) {
	key := SeatPolicyKey(levelID)

	span := startLookup(ctx, key, map[string]interface{}{
		"level_id": levelID,
	})
	defer span.finish()

	if v, ok := r.cache.Get(ctx, key); ok {
		if p, ok := v.(*seatpolicy.SeatPolicy); ok {
			span.hit(true)
			c := *p
			return &c, nil
		}
	}

	p, err := r.inner.Get(ctx, levelID)
	if err != nil {
		span.fail(err)
		return nil, err
	}
	c := *p
	r.cache.Set(ctx, key, &c, 0)
	span.hit(false)
	return p, nil
}

func (r *SeatPolicyRepository) List(ctx context.Context) ([]*seatpolicy.SeatPolicy, error) {
	span := startLookup(ctx, PrefixSeatPolicyList, nil)
	defer span.finish()

	if v, ok := r.cache.Get(ctx, PrefixSeatPolicyList); ok {
		if policies, ok := v.([]*seatpolicy.SeatPolicy); ok {
			span.hit(true)
			return policies, nil
		}
	}

	policies, err := r.inner.List(ctx)
	if err != nil {
		span.fail(err)
		return nil, err
	}
	r.cache.Set(ctx, PrefixSeatPolicyList, policies, 0)
	span.hit(false)
	return policies, nil
}

func (r *SeatPolicyRepository) Upsert(ctx context.Context, p *seatpolicy.SeatPolicy) error {
	if err := r.inner.Upsert(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.LevelID)
	return nil
}

func (r *SeatPolicyRepository) Delete(ctx context.Context, levelID int64) error {
	if err := r.inner.Delete(ctx, levelID); err != nil {
		return err
	}
	r.invalidate(ctx, levelID)
	return nil
}

func (r *SeatPolicyRepository) invalidate(ctx context.Context, levelID int64) {
	r.cache.Delete(ctx, SeatPolicyKey(levelID))
	r.cache.Delete(ctx, PrefixSeatPolicyList)
	r.logger.Debugw("invalidated seat policy cache", "level_id", levelID)
}
