package seatpolicy

import "context"

// Repository provides the seat policy of each membership level
type Repository interface {
	// Get returns the stored policy or an ierr.ErrNotFound marked error
	Get(ctx context.Context, levelID int64) (*SeatPolicy, error)
	List(ctx context.Context) ([]*SeatPolicy, error)
	Upsert(ctx context.Context, policy *SeatPolicy) error
	Delete(ctx context.Context, levelID int64) error
}
