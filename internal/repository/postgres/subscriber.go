package postgres

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
	"github.com/flexprice/playerseats/internal/types"
)

type subscriberRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriberRepository(db *postgres.DB, logger *logger.Logger) subscriber.Repository {
	return &subscriberRepository{db: db, logger: logger}
}

func (r *subscriberRepository) Get(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	query := `
	SELECT id, email, name, level_id, stripe_customer_id, stripe_subscription_id,
		preferred_payment_method, created_at, updated_at, created_by, updated_by
	FROM subscribers
	WHERE id = $1
	`

	var s subscriber.Subscriber
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, id); err != nil {
		return nil, postgres.WrapError(err, "Subscriber not found", map[string]any{
			"subscriber_id": id,
		})
	}
	return &s, nil
}

func (r *subscriberRepository) Upsert(ctx context.Context, s *subscriber.Subscriber) error {
	query := `
	INSERT INTO subscribers (
		id, email, name, level_id, stripe_customer_id, stripe_subscription_id,
		preferred_payment_method, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :email, :name, :level_id, :stripe_customer_id, :stripe_subscription_id,
		:preferred_payment_method, :created_at, :updated_at, :created_by, :updated_by
	)
	ON CONFLICT (id) DO UPDATE SET
		email = EXCLUDED.email,
		name = EXCLUDED.name,
		level_id = EXCLUDED.level_id,
		stripe_customer_id = EXCLUDED.stripe_customer_id,
		stripe_subscription_id = EXCLUDED.stripe_subscription_id,
		preferred_payment_method = EXCLUDED.preferred_payment_method,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, s); err != nil {
		return postgres.WrapError(err, "Failed to save subscriber", map[string]any{
			"subscriber_id": s.ID,
		})
	}
	return nil
}

func (r *subscriberRepository) UpdateLevel(ctx context.Context, id int64, levelID int64) error {
	query := `UPDATE subscribers SET level_id = $1, updated_at = NOW(), updated_by = $2 WHERE id = $3`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, levelID, types.GetUserID(ctx), id)
	if err != nil {
		return postgres.WrapError(err, "Failed to update membership level", map[string]any{
			"subscriber_id": id,
		})
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewError("subscriber not found").
			WithHintf("Subscriber %d not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
