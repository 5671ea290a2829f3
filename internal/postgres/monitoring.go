package postgres

import (
	"context"

	sentryService "github.com/flexprice/playerseats/internal/sentry"
)

// WithTracedTx runs fn in a transaction wrapped in a sentry database span
func (db *DB) WithTracedTx(ctx context.Context, sentry *sentryService.Service, operation string, fn func(ctx context.Context) error) error {
	span, spanCtx := sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"operation": operation,
	})
	defer sentryService.FinishSpan(span)

	return db.WithTx(spanCtx, fn)
}
