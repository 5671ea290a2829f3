package subscriber

import "context"

type Repository interface {
	// Get returns the subscriber or an ierr.ErrNotFound marked error
	Get(ctx context.Context, id int64) (*Subscriber, error)
	Upsert(ctx context.Context, s *Subscriber) error
	// UpdateLevel moves the subscriber to another level, 0 meaning no membership
	UpdateLevel(ctx context.Context, id int64, levelID int64) error
}
