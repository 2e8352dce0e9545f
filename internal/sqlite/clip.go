package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ganot/recital/internal/domain/clip"
	"github.com/ganot/recital/internal/repository"
)

// ClipRepository implements clip.ClipRepository for SQLite
type ClipRepository struct {
	db *DB
}

// NewClipRepository creates a new ClipRepository
func NewClipRepository(db *DB) *ClipRepository {
	return &ClipRepository{db: db}
}

const clipRefColumns = `
	id, story_id, story_title, level, attempt_number, format,
	size_bytes, duration_seconds, words_per_minute, created_at
`

// Insert persists a new clip. Insertion is a single statement, so a clip is
// never visible half-written.
func (r *ClipRepository) Insert(ctx context.Context, c *clip.Clip) error {
	query := `
		INSERT INTO clips (
			id, story_id, story_title, level, attempt_number, format,
			payload, size_bytes, duration_seconds, words_per_minute, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.StoryID,
		c.StoryTitle,
		c.Level,
		c.AttemptNumber,
		c.Format,
		c.Payload,
		c.SizeBytes,
		c.DurationSeconds,
		c.WordsPerMinute,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert clip: %w", err)
	}

	return nil
}

// Get retrieves a clip by ID, payload included
func (r *ClipRepository) Get(ctx context.Context, id string) (*clip.Clip, error) {
	query := `
		SELECT
			id, story_id, story_title, level, attempt_number, format,
			payload, size_bytes, duration_seconds, words_per_minute, created_at
		FROM clips
		WHERE id = ?
	`

	var c clip.Clip
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.StoryID,
		&c.StoryTitle,
		&c.Level,
		&c.AttemptNumber,
		&c.Format,
		&c.Payload,
		&c.SizeBytes,
		&c.DurationSeconds,
		&c.WordsPerMinute,
		&c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clip: %w", err)
	}

	return &c, nil
}

// ListByStory returns clip refs for one story, ordered for review display:
// attempt number first, then creation time, id as a stable tie-break.
func (r *ClipRepository) ListByStory(ctx context.Context, storyID string) ([]clip.ClipRef, error) {
	query := `
		SELECT ` + clipRefColumns + `
		FROM clips
		WHERE story_id = ?
		ORDER BY attempt_number ASC, created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list story clips: %w", err)
	}
	defer rows.Close()

	return scanClipRefs(rows)
}

// ListAll returns refs for every clip, most recent first
func (r *ClipRepository) ListAll(ctx context.Context) ([]clip.ClipRef, error) {
	query := `
		SELECT ` + clipRefColumns + `
		FROM clips
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer rows.Close()

	return scanClipRefs(rows)
}

// Delete removes a clip by ID, reporting whether a row was removed
func (r *ClipRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete clip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// TotalPayloadBytes sums the payload sizes of all clips
func (r *ClipRepository) TotalPayloadBytes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(size_bytes), 0) FROM clips`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payload bytes: %w", err)
	}

	return total, nil
}

// ListOldest returns refs for the oldest clips, ascending by creation time
// with id as a stable tie-break.
func (r *ClipRepository) ListOldest(ctx context.Context, limit int) ([]clip.ClipRef, error) {
	query := `
		SELECT ` + clipRefColumns + `
		FROM clips
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list oldest clips: %w", err)
	}
	defer rows.Close()

	return scanClipRefs(rows)
}

// ListExpiredIDs returns ids of clips created strictly before cutoff,
// oldest first, up to limit. A clip created exactly at the cutoff has not
// yet outlived the age ceiling and is excluded. Paired with per-id deletes
// this forms a cursor: each page only ever sees rows the previous page
// already removed from range.
func (r *ClipRepository) ListExpiredIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	query := `
		SELECT id
		FROM clips
		WHERE created_at < ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired clips: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired clip id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expired clips: %w", err)
	}

	return ids, nil
}

func scanClipRefs(rows *sql.Rows) ([]clip.ClipRef, error) {
	var refs []clip.ClipRef
	for rows.Next() {
		var ref clip.ClipRef
		if err := rows.Scan(
			&ref.ID,
			&ref.StoryID,
			&ref.StoryTitle,
			&ref.Level,
			&ref.AttemptNumber,
			&ref.Format,
			&ref.SizeBytes,
			&ref.DurationSeconds,
			&ref.WordsPerMinute,
			&ref.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan clip ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clips: %w", err)
	}

	return refs, nil
}
