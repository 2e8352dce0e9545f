package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganot/recital/internal/repository"
	"github.com/google/uuid"
)

// evictPageSize bounds how many eviction candidates are fetched per pass.
const evictPageSize = 16

// sweepPageSize bounds how many expired ids are deleted per sweep page.
const sweepPageSize = 64

// Service handles archive business logic: admission, eviction, expiry.
type Service struct {
	clips    ClipRepository
	capacity CapacityProvider
	limits   Limits
	logger   *slog.Logger
}

// NewService creates a new clip archive service. capacity may be nil when
// the platform offers no storage diagnostics.
func NewService(clips ClipRepository, capacity CapacityProvider, limits Limits, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		clips:    clips,
		capacity: capacity,
		limits:   limits,
		logger:   logger,
	}
}

// InsertRequest describes a clip insertion request.
type InsertRequest struct {
	StoryID         string
	StoryTitle      string
	Level           string
	AttemptNumber   int
	Payload         Payload
	DurationSeconds float64
	WordsPerMinute  float64
}

// Insert admits a finished recording into the archive. It rejects payloads
// over the per-clip ceiling before touching storage, reclaims space
// oldest-first toward the total ceiling, then persists. The clip is admitted
// even when eviction could not free enough room.
func (s *Service) Insert(ctx context.Context, req InsertRequest) (*Clip, error) {
	if req.StoryID == "" {
		return nil, fmt.Errorf("%w: story id required", ErrInvalidInput)
	}
	size := int64(len(req.Payload.Bytes))
	if size > s.limits.MaxClipBytes {
		return nil, fmt.Errorf("%w: %d bytes over %d byte ceiling", ErrPayloadTooLarge, size, s.limits.MaxClipBytes)
	}

	if err := s.reclaim(ctx, size); err != nil {
		return nil, err
	}

	attempt := req.AttemptNumber
	if attempt <= 0 {
		attempt = 1
	}

	c := &Clip{
		ID:              uuid.NewString(),
		StoryID:         req.StoryID,
		StoryTitle:      req.StoryTitle,
		Level:           req.Level,
		AttemptNumber:   attempt,
		Format:          req.Payload.Format,
		Payload:         req.Payload.Bytes,
		SizeBytes:       size,
		DurationSeconds: req.DurationSeconds,
		WordsPerMinute:  req.WordsPerMinute,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.clips.Insert(ctx, c); err != nil {
		return nil, s.storeFailure("inserting clip", err)
	}

	s.logger.Debug("clip archived",
		"clip_id", c.ID,
		"story_id", c.StoryID,
		"size_bytes", c.SizeBytes,
		"format", c.Format)
	return c, nil
}

// reclaim deletes oldest clips until the projected total fits under the
// store ceiling. It stops when nothing remains to evict; admission proceeds
// regardless.
func (s *Service) reclaim(ctx context.Context, incoming int64) error {
	total, err := s.clips.TotalPayloadBytes(ctx)
	if err != nil {
		return s.storeFailure("computing archive usage", err)
	}
	if total+incoming <= s.limits.MaxStoreBytes {
		return nil
	}

	var freed int64
	var evicted int
	for total-freed+incoming > s.limits.MaxStoreBytes {
		oldest, err := s.clips.ListOldest(ctx, evictPageSize)
		if err != nil {
			return s.storeFailure("listing eviction candidates", err)
		}
		if len(oldest) == 0 {
			break
		}
		for _, ref := range oldest {
			if total-freed+incoming <= s.limits.MaxStoreBytes {
				break
			}
			deleted, err := s.clips.Delete(ctx, ref.ID)
			if err != nil {
				return s.storeFailure("evicting clip", err)
			}
			if !deleted {
				// Raced with a concurrent delete; nothing was freed.
				continue
			}
			freed += ref.SizeBytes
			evicted++
		}
	}

	if evicted > 0 {
		s.logger.Info("evicted clips for space",
			"evicted", evicted,
			"freed_bytes", freed,
			"incoming_bytes", incoming)
	}
	return nil
}

// Get returns one clip with its payload.
func (s *Service) Get(ctx context.Context, id string) (*Clip, error) {
	c, err := s.clips.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClipNotFound
		}
		return nil, s.storeFailure("loading clip", err)
	}
	return c, nil
}

// GetByStory returns all clips for a story ordered by
// (attempt number, creation time) ascending.
func (s *Service) GetByStory(ctx context.Context, storyID string) ([]ClipRef, error) {
	refs, err := s.clips.ListByStory(ctx, storyID)
	if err != nil {
		return nil, s.storeFailure("listing story clips", err)
	}
	return refs, nil
}

// GetAll returns every clip, most recent first.
func (s *Service) GetAll(ctx context.Context) ([]ClipRef, error) {
	refs, err := s.clips.ListAll(ctx)
	if err != nil {
		return nil, s.storeFailure("listing clips", err)
	}
	return refs, nil
}

// Delete removes a clip by id. Deleting a nonexistent id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.clips.Delete(ctx, id); err != nil {
		return s.storeFailure("deleting clip", err)
	}
	return nil
}

// TotalBytesUsed reports the summed payload size of all archived clips.
func (s *Service) TotalBytesUsed(ctx context.Context) (int64, error) {
	total, err := s.clips.TotalPayloadBytes(ctx)
	if err != nil {
		return 0, s.storeFailure("computing archive usage", err)
	}
	return total, nil
}

// SweepExpired deletes every clip older than the age ceiling as of now,
// returning the count removed. Deletion pages through expired ids so a clip
// is never visited twice, and clips inserted mid-sweep are untouched because
// the cutoff predates their creation.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.UTC().Add(-s.limits.MaxClipAge)
	removed := 0
	for {
		ids, err := s.clips.ListExpiredIDs(ctx, cutoff, sweepPageSize)
		if err != nil {
			return removed, s.storeFailure("listing expired clips", err)
		}
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			deleted, err := s.clips.Delete(ctx, id)
			if err != nil {
				return removed, s.storeFailure("deleting expired clip", err)
			}
			if deleted {
				removed++
			}
		}
	}
	if removed > 0 {
		s.logger.Info("swept expired clips", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// Diagnostics reports platform storage usage. A missing or failing capacity
// provider degrades to zeros rather than an error.
func (s *Service) Diagnostics(ctx context.Context) CapacityInfo {
	if s.capacity == nil {
		return CapacityInfo{}
	}
	info, err := s.capacity.Capacity(ctx)
	if err != nil {
		s.logger.Debug("capacity query failed", "error", err)
		return CapacityInfo{}
	}
	return info
}

// storeFailure logs the full persistence cause and collapses it to
// ErrStoreUnavailable for callers.
func (s *Service) storeFailure(op string, err error) error {
	s.logger.Error("store operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
}
