package postgres

import (
	"context"

	"github.com/flexprice/playerseats/internal/domain/audit"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
	"github.com/flexprice/playerseats/internal/types"
)

type auditRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAuditRepository(db *postgres.DB, logger *logger.Logger) audit.Repository {
	return &auditRepository{db: db, logger: logger}
}

const auditColumns = `id, subscriber_id, timestamp, old_seats, new_seats, proration_amount,
	proration_kind, actor_id, actor_type, payment_method, payment_ref`

// Append stores the entry and trims the subscriber's log to the newest limit entries
func (r *auditRepository) Append(ctx context.Context, entry *audit.Entry, limit int) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)

		insert := `
		INSERT INTO seat_audit_log (` + auditColumns + `)
		VALUES (
			:id, :subscriber_id, :timestamp, :old_seats, :new_seats, :proration_amount,
			:proration_kind, :actor_id, :actor_type, :payment_method, :payment_ref
		)
		`
		if _, err := q.NamedExecContext(ctx, insert, entry); err != nil {
			return postgres.WrapError(err, "Failed to append audit entry", map[string]any{
				"subscriber_id": entry.SubscriberID,
			})
		}
		if limit <= 0 {
			return nil
		}

		evict := `
		DELETE FROM seat_audit_log
		WHERE id IN (
			SELECT id FROM seat_audit_log
			WHERE subscriber_id = $1
			ORDER BY timestamp DESC, id DESC
			OFFSET $2
		)
		`
		result, err := q.ExecContext(ctx, evict, entry.SubscriberID, limit)
		if err != nil {
			return postgres.WrapError(err, "Failed to trim audit log", map[string]any{
				"subscriber_id": entry.SubscriberID,
			})
		}
		if rows, _ := result.RowsAffected(); rows > 0 {
			r.logger.Debugw("evicted audit entries",
				"subscriber_id", entry.SubscriberID,
				"count", rows)
		}
		return nil
	})
}

func (r *auditRepository) List(ctx context.Context, subscriberID int64, filter types.ListFilter) ([]*audit.Entry, error) {
	query := `
	SELECT ` + auditColumns + `
	FROM seat_audit_log
	WHERE subscriber_id = $1
	ORDER BY timestamp DESC, id DESC
	LIMIT $2 OFFSET $3
	`

	var entries []*audit.Entry
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query,
		subscriberID, filter.GetLimit(), filter.GetOffset()); err != nil {
		return nil, postgres.WrapError(err, "Failed to list audit entries", map[string]any{
			"subscriber_id": subscriberID,
		})
	}
	return entries, nil
}

func (r *auditRepository) Count(ctx context.Context, subscriberID int64) (int, error) {
	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM seat_audit_log WHERE subscriber_id = $1`, subscriberID); err != nil {
		return 0, postgres.WrapError(err, "Failed to count audit entries", nil)
	}
	return count, nil
}
