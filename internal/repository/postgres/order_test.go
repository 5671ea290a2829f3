package postgres

import (
	"testing"

	"github.com/flexprice/playerseats/internal/domain/order"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestBuildOrderQuery(t *testing.T) {
	t.Run("no_filter", func(t *testing.T) {
		query, args := buildOrderQuery(nil)
		assert.NotContains(t, query, "WHERE")
		assert.NotContains(t, query, "LIMIT")
		assert.Contains(t, query, "ORDER BY timestamp DESC, id DESC")
		assert.Empty(t, args)
	})

	t.Run("payment_evidence_filter", func(t *testing.T) {
		query, args := buildOrderQuery(&order.Filter{
			SubscriberID:    7,
			LevelID:         3,
			ExcludeGateways: []types.OrderGateway{types.OrderGatewayProration},
			Statuses:        []types.OrderStatus{types.OrderStatusSuccess, types.OrderStatusPending},
			Limit:           10,
		})

		assert.Contains(t, query, "subscriber_id = $1 AND level_id = $2 AND gateway <> ALL($3) AND status = ANY($4)")
		assert.Contains(t, query, "LIMIT $5")
		assert.Len(t, args, 5)
		assert.Equal(t, int64(7), args[0])
		assert.Equal(t, int64(3), args[1])
		assert.Equal(t, pq.Array([]string{"proration"}), args[2])
		assert.Equal(t, 10, args[4])
	})

	t.Run("limit_only", func(t *testing.T) {
		query, args := buildOrderQuery(&order.Filter{Limit: 1})
		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "LIMIT $1")
		assert.Equal(t, []interface{}{1}, args)
	})
}
