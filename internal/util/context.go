package util

import (
	"context"
	"time"
)

// Context keys.
type ctxKey string

const (
	ctxKeyRoute     ctxKey = "route"
	ctxKeyStartTime ctxKey = "start_time"
)

// ContextWithRoute adds the matched route template to the context.
func ContextWithRoute(ctx context.Context, template string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, template)
}

// RouteFromContext extracts the matched route template from context.
// Returns "" if no route has been resolved yet.
func RouteFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRoute).(string); ok {
		return v
	}
	return ""
}

// ContextWithStartTime adds a request start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyStartTime, t)
}

// StartTimeFromContext extracts the request start time from context.
func StartTimeFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(ctxKeyStartTime).(time.Time)
	return t, ok
}
