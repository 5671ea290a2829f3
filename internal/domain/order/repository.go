package order

import (
	"context"

	"github.com/flexprice/playerseats/internal/types"
)

// Filter narrows the orders of one subscriber
type Filter struct {
	SubscriberID int64
	// LevelID of zero matches orders of any level
	LevelID int64
	// ExcludeGateways drops orders recorded by these gateways
	ExcludeGateways []types.OrderGateway
	Statuses        []types.OrderStatus
	Limit           int
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	// List returns matching orders newest first
	List(ctx context.Context, filter *Filter) ([]*Order, error)
	// GetLatest returns the newest matching order or an ierr.ErrNotFound marked error
	GetLatest(ctx context.Context, filter *Filter) (*Order, error)
}
