package services

import (
	"context"
	"time"
)

// withStoreTimeout bounds one service call's store work. A non-positive
// timeout leaves ctx unchanged.
func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
