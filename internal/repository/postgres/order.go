package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/flexprice/playerseats/internal/domain/order"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/postgres"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type orderRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	query := `
	INSERT INTO membership_orders (
		id, code, subscriber_id, level_id, gateway, status, total, currency, notes,
		external_ref, timestamp, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :code, :subscriber_id, :level_id, :gateway, :status, :total, :currency, :notes,
		:external_ref, :timestamp, :created_at, :updated_at, :created_by, :updated_by
	)
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, o); err != nil {
		return postgres.WrapError(err, "Failed to record membership order", map[string]any{
			"subscriber_id": o.SubscriberID,
			"code":          o.Code,
		})
	}
	return nil
}

// List returns matching orders newest first
func (r *orderRepository) List(ctx context.Context, filter *order.Filter) ([]*order.Order, error) {
	query, args := buildOrderQuery(filter)

	var orders []*order.Order
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, postgres.WrapError(err, "Failed to list membership orders", nil)
	}
	return orders, nil
}

func (r *orderRepository) GetLatest(ctx context.Context, filter *order.Filter) (*order.Order, error) {
	f := order.Filter{}
	if filter != nil {
		f = *filter
	}
	f.Limit = 1

	orders, err := r.List(ctx, &f)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ierr.NewError("no matching order").
			WithHint("Subscriber has no matching orders").
			Mark(ierr.ErrNotFound)
	}
	return orders[0], nil
}

func buildOrderQuery(filter *order.Filter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter != nil {
		if filter.SubscriberID != 0 {
			add("subscriber_id = $%d", filter.SubscriberID)
		}
		if filter.LevelID != 0 {
			add("level_id = $%d", filter.LevelID)
		}
		if len(filter.ExcludeGateways) > 0 {
			add("gateway <> ALL($%d)", pq.Array(lo.Map(filter.ExcludeGateways, func(g types.OrderGateway, _ int) string {
				return string(g)
			})))
		}
		if len(filter.Statuses) > 0 {
			add("status = ANY($%d)", pq.Array(lo.Map(filter.Statuses, func(s types.OrderStatus, _ int) string {
				return string(s)
			})))
		}
	}

	query := `
	SELECT id, code, subscriber_id, level_id, gateway, status, total, currency, notes,
		external_ref, timestamp, created_at, updated_at, created_by, updated_by
	FROM membership_orders`
	if len(conditions) > 0 {
		query += "\n\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\tORDER BY timestamp DESC, id DESC"
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf("\n\tLIMIT $%d", len(args))
	}
	return query, args
}
