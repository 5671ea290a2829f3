package postgres

import (
	"context"
	"time"

	"github.com/flexprice/playerseats/internal/domain/seat"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
	"github.com/flexprice/playerseats/internal/types"
)

type seatRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSeatRepository(db *postgres.DB, logger *logger.Logger) seat.Repository {
	return &seatRepository{db: db, logger: logger}
}

func (r *seatRepository) Get(ctx context.Context, subscriberID int64) (*seat.State, error) {
	query := `
	SELECT subscriber_id, level_id, current_seats, last_adjustment_at, version,
		created_at, updated_at, created_by, updated_by
	FROM subscriber_seats
	WHERE subscriber_id = $1
	`

	var s seat.State
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, subscriberID); err != nil {
		return nil, postgres.WrapError(err, "Seat state not found", map[string]any{
			"subscriber_id": subscriberID,
		})
	}
	return &s, nil
}

// Save writes the state if the stored version still equals state.Version and
// bumps the version on success. A zero version inserts a new row.
func (r *seatRepository) Save(ctx context.Context, s *seat.State) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
		s.CreatedBy = types.GetUserID(ctx)
	}
	s.UpdatedAt = now
	s.UpdatedBy = types.GetUserID(ctx)

	var query string
	if s.IsNew() {
		query = `
		INSERT INTO subscriber_seats (
			subscriber_id, level_id, current_seats, last_adjustment_at, version,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:subscriber_id, :level_id, :current_seats, :last_adjustment_at, 1,
			:created_at, :updated_at, :created_by, :updated_by
		)
		ON CONFLICT (subscriber_id) DO NOTHING
		`
	} else {
		query = `
		UPDATE subscriber_seats SET
			level_id = :level_id,
			current_seats = :current_seats,
			last_adjustment_at = :last_adjustment_at,
			version = version + 1,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE subscriber_id = :subscriber_id AND version = :version
		`
	}

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, s)
	if err != nil {
		return postgres.WrapError(err, "Failed to save seat state", map[string]any{
			"subscriber_id": s.SubscriberID,
		})
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return postgres.WrapError(err, "Failed to save seat state", nil)
	}
	if rows == 0 {
		r.logger.Warnw("seat state version conflict",
			"subscriber_id", s.SubscriberID,
			"version", s.Version)
		return ierr.NewError("stale seat state").
			WithHintf("Seat state changed concurrently (expected version %d)", s.Version).
			WithReportableDetails(map[string]any{
				"subscriber_id": s.SubscriberID,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	s.Version++
	return nil
}

func (r *seatRepository) Delete(ctx context.Context, subscriberID int64) error {
	if _, err := r.db.GetQuerier(ctx).ExecContext(ctx, `DELETE FROM subscriber_seats WHERE subscriber_id = $1`, subscriberID); err != nil {
		return postgres.WrapError(err, "Failed to delete seat state", map[string]any{
			"subscriber_id": subscriberID,
		})
	}
	return nil
}
