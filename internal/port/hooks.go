package port

import (
	"context"
	"time"
)

// SignatureVerifier checks the authenticity header of a provider callback.
// An empty signature is handled by the caller before Verify is reached.
type SignatureVerifier interface {
	Verify(payload []byte, signature string) error
}

// RetentionPolicy decides which finished jobs are purged by the daily
// cleanup task and returns how many were removed.
type RetentionPolicy interface {
	Purge(ctx context.Context, now time.Time) (int64, error)
}
