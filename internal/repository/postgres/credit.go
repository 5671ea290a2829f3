package postgres

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/credit"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
	"github.com/flexprice/playerseats/internal/types"
)

type creditRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCreditRepository(db *postgres.DB, logger *logger.Logger) credit.Repository {
	return &creditRepository{db: db, logger: logger}
}

func (r *creditRepository) Create(ctx context.Context, c *credit.PendingCredit) error {
	query := `
	INSERT INTO pending_credits (
		id, subscriber_id, amount, remaining, currency, description, status,
		external_ref, applied_at, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :subscriber_id, :amount, :remaining, :currency, :description, :status,
		:external_ref, :applied_at, :created_at, :updated_at, :created_by, :updated_by
	)
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, c); err != nil {
		return postgres.WrapError(err, "Failed to store pending credit", map[string]any{
			"subscriber_id": c.SubscriberID,
		})
	}
	return nil
}

// ListAvailable returns unused credits oldest first
func (r *creditRepository) ListAvailable(ctx context.Context, subscriberID int64) ([]*credit.PendingCredit, error) {
	query := `
	SELECT id, subscriber_id, amount, remaining, currency, description, status,
		external_ref, applied_at, created_at, updated_at, created_by, updated_by
	FROM pending_credits
	WHERE subscriber_id = $1 AND status = $2
	ORDER BY created_at ASC, id ASC
	`

	var credits []*credit.PendingCredit
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &credits, query, subscriberID, types.CreditStatusAvailable); err != nil {
		return nil, postgres.WrapError(err, "Failed to list pending credits", map[string]any{
			"subscriber_id": subscriberID,
		})
	}
	return credits, nil
}

func (r *creditRepository) Update(ctx context.Context, c *credit.PendingCredit) error {
	query := `
	UPDATE pending_credits SET
		remaining = :remaining,
		status = :status,
		applied_at = :applied_at,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, c)
	if err != nil {
		return postgres.WrapError(err, "Failed to update pending credit", map[string]any{
			"credit_id": c.ID,
		})
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewError("pending credit not found").
			WithHintf("Credit %s not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *creditRepository) VoidAvailable(ctx context.Context, subscriberID int64) (int, error) {
	query := `
	UPDATE pending_credits SET status = $1, updated_at = NOW()
	WHERE subscriber_id = $2 AND status = $3
	`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		types.CreditStatusVoided, subscriberID, types.CreditStatusAvailable)
	if err != nil {
		return 0, postgres.WrapError(err, "Failed to void pending credits", map[string]any{
			"subscriber_id": subscriberID,
		})
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, postgres.WrapError(err, "Failed to void pending credits", nil)
	}
	return int(rows), nil
}
