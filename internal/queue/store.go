package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages video persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// NewVideo inserts a newly discovered video in pending state. Re-inserting a
// known video_id returns the existing record unchanged, so channel polls are
// idempotent.
func (s *Store) NewVideo(ctx context.Context, video *Video) (*Video, error) {
	if video == nil {
		return nil, errors.New("video is nil")
	}
	if video.VideoID == "" {
		return nil, errors.New("video id is required")
	}

	if existing, err := s.FindByVideoID(ctx, video.VideoID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	status := video.Status
	if status == "" {
		status = StatusPending
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO videos (
            video_id, channel_id, channel_name, title, url, published_at,
            status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.VideoID,
		nullableString(video.ChannelID),
		nullableString(video.ChannelName),
		nullableString(video.Title),
		nullableString(video.URL),
		nullableTime(&video.PublishedAt),
		status,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a video by database identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// FindByVideoID returns the video with the given YouTube identifier, or nil.
func (s *Store) FindByVideoID(ctx context.Context, videoID string) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE video_id = ?`, videoID)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by video id: %w", err)
	}
	return video, nil
}

// Update persists changes to an existing video.
func (s *Store) Update(ctx context.Context, video *Video) error {
	if video == nil {
		return errors.New("video is nil")
	}
	video.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE videos
         SET channel_id = ?, channel_name = ?, title = ?, url = ?, published_at = ?,
             status = ?, transcript_path = ?, transcript_chars = ?, error_message = ?,
             final_summary = ?, summary_method = ?, primary_model = ?, secondary_model = ?,
             synthesis_model = ?, fallback_used = ?, fallback_strategy = ?,
             processing_seconds = ?, cost_estimate = ?, token_usage_json = ?,
             notified_at = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(video.ChannelID),
		nullableString(video.ChannelName),
		nullableString(video.Title),
		nullableString(video.URL),
		nullableTime(&video.PublishedAt),
		video.Status,
		nullableString(video.TranscriptPath),
		video.TranscriptChars,
		nullableString(video.ErrorMessage),
		nullableString(video.FinalSummary),
		nullableString(video.SummaryMethod),
		nullableString(video.PrimaryModel),
		nullableString(video.SecondaryModel),
		nullableString(video.SynthesisModel),
		boolToInt(video.FallbackUsed),
		nullableString(video.FallbackStrategy),
		video.ProcessingSeconds,
		video.CostEstimate,
		nullableString(video.TokenUsageJSON),
		nullableTime(video.NotifiedAt),
		video.UpdatedAt.Format(time.RFC3339Nano),
		video.ID,
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return nil
}

// VideosByStatus returns videos matching a status ordered by creation time.
func (s *Store) VideosByStatus(ctx context.Context, status Status) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()
	return collectVideos(rows)
}

// List returns videos filtered by status set, or all videos when no status
// is provided.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Video, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + videoColumns + ` FROM videos`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()
	return collectVideos(rows)
}

// NextForStatus claims the oldest video in from, atomically moving it to the
// in-flight status to. It returns nil when nothing is waiting.
func (s *Store) NextForStatus(ctx context.Context, from, to Status) (*Video, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	row := s.db.QueryRowContext(
		ctx,
		`UPDATE videos SET status = ?, updated_at = ?
         WHERE id = (SELECT id FROM videos WHERE status = ? ORDER BY created_at LIMIT 1)
         RETURNING `+videoColumns,
		to,
		timestamp,
		from,
	)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim next video: %w", err)
	}
	return video, nil
}

// ResetStuck rolls every in-flight video back to its stage's starting
// status. Called on daemon startup so work interrupted by a crash is retried
// rather than stranded.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var total int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE videos SET status = ?, updated_at = ? WHERE status = ?`,
			transition.to,
			timestamp,
			transition.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset %s videos: %w", transition.from, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			total += affected
		}
	}
	return total, nil
}

// FailInFlight marks every in-flight video failed with reason. Used during
// graceful shutdown when the operator asked to not resume later.
func (s *Store) FailInFlight(ctx context.Context, reason string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var total int64
	for status := range processingStatuses {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE videos SET status = ?, error_message = ?, updated_at = ? WHERE status = ?`,
			StatusFailed,
			reason,
			timestamp,
			status,
		)
		if err != nil {
			return total, fmt.Errorf("fail %s videos: %w", status, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			total += affected
		}
	}
	return total, nil
}

// RetryFailed resets failed videos for another attempt. Videos that already
// hold a summary resume at the delivery stage so the models are not re-billed;
// everything else starts over from pending.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var total int64

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE videos SET status = ?, error_message = NULL, updated_at = ?
		 WHERE status = ? AND final_summary IS NOT NULL AND final_summary != ''`,
		StatusSummarized,
		timestamp,
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed videos: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil {
		total += affected
	}

	res, err = s.db.ExecContext(
		ctx,
		`UPDATE videos SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
		StatusPending,
		timestamp,
		StatusFailed,
	)
	if err != nil {
		return total, fmt.Errorf("retry failed videos: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil {
		total += affected
	}
	return total, nil
}

// Delete removes one video.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	return nil
}

// Clear removes videos. With completedOnly it removes only completed ones.
func (s *Store) Clear(ctx context.Context, completedOnly bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if completedOnly {
		res, err = s.db.ExecContext(ctx, `DELETE FROM videos WHERE status = ?`, StatusCompleted)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM videos`)
	}
	if err != nil {
		return 0, fmt.Errorf("clear videos: %w", err)
	}
	return res.RowsAffected()
}

// Health aggregates per-state counts for status displays.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM videos GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("query health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var (
			statusStr string
			count     int
		)
		if err := rows.Scan(&statusStr, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		status := Status(statusStr)
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		case IsProcessingStatus(status):
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}

func collectVideos(rows *sql.Rows) ([]*Video, error) {
	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
