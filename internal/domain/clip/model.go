package clip

import "time"

// Clip represents one archived reading-practice recording.
type Clip struct {
	ID              string    `json:"id"`
	StoryID         string    `json:"story_id"`
	StoryTitle      string    `json:"story_title"`
	Level           string    `json:"level"`
	AttemptNumber   int       `json:"attempt_number"`
	Format          string    `json:"format"`
	Payload         []byte    `json:"-"`
	SizeBytes       int64     `json:"size_bytes"`
	DurationSeconds float64   `json:"duration_seconds"`
	WordsPerMinute  float64   `json:"words_per_minute"`
	CreatedAt       time.Time `json:"created_at"`
}

// ClipRef is a lightweight reference to a clip without its audio payload.
type ClipRef struct {
	ID              string    `json:"id"`
	StoryID         string    `json:"story_id"`
	StoryTitle      string    `json:"story_title"`
	Level           string    `json:"level"`
	AttemptNumber   int       `json:"attempt_number"`
	Format          string    `json:"format"`
	SizeBytes       int64     `json:"size_bytes"`
	DurationSeconds float64   `json:"duration_seconds"`
	WordsPerMinute  float64   `json:"words_per_minute"`
	CreatedAt       time.Time `json:"created_at"`
}

// Payload is a finished encoded recording produced by a capture session.
type Payload struct {
	Bytes  []byte
	Format string
}

// Limits bounds what the archive will hold.
type Limits struct {
	// MaxClipBytes is the hard per-clip payload ceiling.
	MaxClipBytes int64
	// MaxStoreBytes is the soft total-archive ceiling. Eviction frees space
	// oldest-first to stay under it, but the newest clip is always admitted.
	MaxStoreBytes int64
	// MaxClipAge is the absolute age ceiling enforced by the expiry sweep.
	MaxClipAge time.Duration
}

// DefaultLimits mirrors the reference policy: 5 MiB per clip, 50 MiB total,
// seven-day retention.
func DefaultLimits() Limits {
	return Limits{
		MaxClipBytes:  5 << 20,
		MaxStoreBytes: 50 << 20,
		MaxClipAge:    7 * 24 * time.Hour,
	}
}

// CapacityInfo reports platform storage usage for diagnostics display.
type CapacityInfo struct {
	UsageBytes int64 `json:"usage_bytes"`
	QuotaBytes int64 `json:"quota_bytes"`
}
