package clip

import (
	"context"
	"time"
)

// ClipRepository provides persistence for clips.
type ClipRepository interface {
	Insert(ctx context.Context, c *Clip) error
	Get(ctx context.Context, id string) (*Clip, error)
	ListByStory(ctx context.Context, storyID string) ([]ClipRef, error)
	ListAll(ctx context.Context) ([]ClipRef, error)
	Delete(ctx context.Context, id string) (bool, error)
	TotalPayloadBytes(ctx context.Context) (int64, error)
	ListOldest(ctx context.Context, limit int) ([]ClipRef, error)
	ListExpiredIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// CapacityProvider is an optional platform query for storage diagnostics.
// Implementations that cannot answer should return a zero CapacityInfo.
type CapacityProvider interface {
	Capacity(ctx context.Context) (CapacityInfo, error)
}
