package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextSellerKey ctxKey = "sellerID"

func SellerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if sellerID, ok := ctx.Value(ContextSellerKey).(string); ok {
		return sellerID
	}
	return ""
}

func ContextWithSellerID(ctx context.Context, sellerID string) context.Context {
	return context.WithValue(ctx, ContextSellerKey, sellerID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
