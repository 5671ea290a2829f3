package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// lookupSpan traces one cache lookup. It is a no-op without a sentry hub in ctx.
type lookupSpan struct {
	span *sentry.Span
}

func startLookup(ctx context.Context, key string, params map[string]interface{}) *lookupSpan {
	if sentry.GetHubFromContext(ctx) == nil {
		return &lookupSpan{}
	}

	span := sentry.StartSpan(ctx, "cache.get")
	span.Description = key
	span.SetData("cache.key", key)
	for k, v := range params {
		span.SetData(k, v)
	}
	return &lookupSpan{span: span}
}

// hit records whether the value came from the cache
func (l *lookupSpan) hit(found bool) {
	if l.span == nil {
		return
	}
	l.span.SetData("cache.hit", found)
	l.span.Status = sentry.SpanStatusOK
}

func (l *lookupSpan) fail(err error) {
	if l.span == nil || err == nil {
		return
	}
	l.span.Status = sentry.SpanStatusInternalError
	l.span.SetData("error", err.Error())
}

func (l *lookupSpan) finish() {
	if l.span != nil {
		l.span.Finish()
	}
}
