package audit

import (
	"context"

	"github.com/flexprice/playerseats/internal/types"
)

// Repository is a bounded per subscriber log of seat changes
type Repository interface {
	// Append stores the entry and evicts the oldest entries of the subscriber
	// so that at most limit remain
	Append(ctx context.Context, entry *Entry, limit int) error
	// List returns entries newest first
	List(ctx context.Context, subscriberID int64, filter types.ListFilter) ([]*Entry, error)
	Count(ctx context.Context, subscriberID int64) (int, error)
}
