package seat

import "context"

// Repository persists subscriber seat states
type Repository interface {
	// Get returns the saved state or an ierr.ErrNotFound marked error
	Get(ctx context.Context, subscriberID int64) (*State, error)
	// Save inserts a new state (Version 0) or updates an existing one when the
	// stored version still equals state.Version. On success state.Version is
	// incremented. A stale version returns an ierr.ErrVersionConflict marked error.
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, subscriberID int64) error
}
