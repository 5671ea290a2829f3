package credit

import "context"

type Repository interface {
	Create(ctx context.Context, c *PendingCredit) error
	// ListAvailable returns the subscriber's available credits oldest first
	ListAvailable(ctx context.Context, subscriberID int64) ([]*PendingCredit, error)
	Update(ctx context.Context, c *PendingCredit) error
	// VoidAvailable voids every available credit of the subscriber and returns how many were voided
	VoidAvailable(ctx context.Context, subscriberID int64) (int, error)
}
