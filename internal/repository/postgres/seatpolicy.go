package postgres

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
)

type seatPolicyRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSeatPolicyRepository(db *postgres.DB, logger *logger.Logger) seatpolicy.Repository {
	return &seatPolicyRepository{db: db, logger: logger}
}

const seatPolicyColumns = `level_id, default_seats, allow_extra, price_per_seat_monthly, billing_amount, max_seats,
	proration_enabled, features, created_at, updated_at, created_by, updated_by`

func (r *seatPolicyRepository) Get(ctx context.Context, levelID int64) (*seatpolicy.SeatPolicy, error) {
	query := `SELECT ` + seatPolicyColumns + ` FROM seat_policies WHERE level_id = $1`

	var p seatpolicy.SeatPolicy
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, levelID); err != nil {
		return nil, postgres.WrapError(err, "Seat policy not found", map[string]any{
			"level_id": levelID,
		})
	}
	return &p, nil
}

func (r *seatPolicyRepository) List(ctx context.Context) ([]*seatpolicy.SeatPolicy, error) {
	query := `SELECT ` + seatPolicyColumns + ` FROM seat_policies ORDER BY level_id`

	var policies []*seatpolicy.SeatPolicy
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &policies, query); err != nil {
		return nil, postgres.WrapError(err, "Failed to list seat policies", nil)
	}
	return policies, nil
}

func (r *seatPolicyRepository) Upsert(ctx context.Context, p *seatpolicy.SeatPolicy) error {
	query := `
	INSERT INTO seat_policies (` + seatPolicyColumns + `)
	VALUES (
		:level_id, :default_seats, :allow_extra, :price_per_seat_monthly, :billing_amount, :max_seats,
		:proration_enabled, :features, :created_at, :updated_at, :created_by, :updated_by
	)
	ON CONFLICT (level_id) DO UPDATE SET
		default_seats = EXCLUDED.default_seats,
		allow_extra = EXCLUDED.allow_extra,
		price_per_seat_monthly = EXCLUDED.price_per_seat_monthly,
		billing_amount = EXCLUDED.billing_amount,
		max_seats = EXCLUDED.max_seats,
		proration_enabled = EXCLUDED.proration_enabled,
		features = EXCLUDED.features,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		return postgres.WrapError(err, "Failed to save seat policy", map[string]any{
			"level_id": p.LevelID,
		})
	}
	return nil
}

func (r *seatPolicyRepository) Delete(ctx context.Context, levelID int64) error {
	if _, err := r.db.GetQuerier(ctx).ExecContext(ctx, `DELETE FROM seat_policies WHERE level_id = $1`, levelID); err != nil {
		return postgres.WrapError(err, "Failed to delete seat policy", map[string]any{
			"level_id": levelID,
		})
	}
	return nil
}
