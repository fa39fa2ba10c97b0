package ratelimit

import (
	"context"
	"time"
)

// Store keeps the hit history behind a sliding window, one entry per visitor key.
type Store interface {
	// Record adds a hit for key at the current time and returns how many hits
	// fall inside window, the new one included. Older hits are discarded.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
