package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ErrAlreadyDownloaded reports that an artifact for the clip already exists.
// The UNIQUE constraint on clip_id raises it, so two concurrent inserts for
// the same clip resolve to exactly one stored row.
var ErrAlreadyDownloaded = errors.New("clip already downloaded")

const clipColumns = `id, clip_id, url, title, creator, broadcaster, game, view_count, duration,
	file_path, file_size, downloaded_at, updated_at, processed, processing_status, error_message,
	generated_title, generated_description, tags_json, category, viral_score, sentiment,
	estimated_views, best_upload_time, hashtags_json, quality_reason`

var clipColumnList = columnList(clipColumns)

// InsertClip records a freshly downloaded clip. A duplicate clip_id returns
// ErrAlreadyDownloaded without touching the existing row.
func (s *Store) InsertClip(ctx context.Context, clip *DownloadedClip) (*DownloadedClip, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	status := clip.ProcessingStatus
	if status == "" {
		status = StatusPending
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO downloaded_clips (
            clip_id, url, title, creator, broadcaster, game, view_count, duration,
            file_path, file_size, downloaded_at, updated_at, processed, processing_status
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clip.ClipID,
		clip.URL,
		nullableString(clip.Title),
		nullableString(clip.Creator),
		nullableString(clip.Broadcaster),
		nullableString(clip.Game),
		clip.ViewCount,
		clip.Duration,
		nullableString(clip.FilePath),
		clip.FileSize,
		timestamp,
		timestamp,
		clip.Processed,
		string(status),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("clip %s: %w", clip.ClipID, ErrAlreadyDownloaded)
		}
		return nil, fmt.Errorf("insert clip: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetClip(ctx, id)
}

// GetClip loads a clip by its row id.
func (s *Store) GetClip(ctx context.Context, id int64) (*DownloadedClip, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clipColumns+` FROM downloaded_clips WHERE id = ?`, id)
	return scanClip(row)
}

// GetClipByClipID loads a clip by the source clip identifier.
func (s *Store) GetClipByClipID(ctx context.Context, clipID string) (*DownloadedClip, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clipColumns+` FROM downloaded_clips WHERE clip_id = ?`, clipID)
	return scanClip(row)
}

// DownloadedKeys returns the clip ids and URLs of every stored clip, used to
// filter already-downloaded candidates during selection.
func (s *Store) DownloadedKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT clip_id, url FROM downloaded_clips`)
	if err != nil {
		return nil, fmt.Errorf("query downloaded keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var clipID, url string
		if err := rows.Scan(&clipID, &url); err != nil {
			return nil, fmt.Errorf("scan downloaded key: %w", err)
		}
		keys[clipID] = struct{}{}
		keys[url] = struct{}{}
	}
	return keys, rows.Err()
}

// ClipsByStatus lists clips whose processing status matches any of the given
// statuses, oldest first.
func (s *Store) ClipsByStatus(ctx context.Context, statuses ...ProcessingStatus) ([]*DownloadedClip, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}

	query, args, err := sq.Select(clipColumnList...).
		From("downloaded_clips").
		Where(sq.Eq{"processing_status": values}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build clips query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clips by status: %w", err)
	}
	defer rows.Close()
	return collectClips(rows)
}

// UpdateClipAnalysis persists analysis output and the resulting status.
func (s *Store) UpdateClipAnalysis(ctx context.Context, clip *DownloadedClip) error {
	tagsJSON, err := marshalStrings(clip.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	hashtagsJSON, err := marshalStrings(clip.Hashtags)
	if err != nil {
		return fmt.Errorf("marshal hashtags: %w", err)
	}

	query, args, err := sq.Update("downloaded_clips").
		SetMap(map[string]any{
			"updated_at":            time.Now().UTC().Format(time.RFC3339Nano),
			"processed":             clip.Processed,
			"processing_status":     string(clip.ProcessingStatus),
			"error_message":         nullableString(clip.ErrorMessage),
			"generated_title":       nullableString(clip.GeneratedTitle),
			"generated_description": nullableString(clip.GeneratedDescription),
			"tags_json":             tagsJSON,
			"category":              nullableString(clip.Category),
			"viral_score":           clip.ViralScore,
			"sentiment":             nullableString(clip.Sentiment),
			"estimated_views":       clip.EstimatedViews,
			"best_upload_time":      nullableString(clip.BestUploadTime),
			"hashtags_json":         hashtagsJSON,
			"quality_reason":        nullableString(clip.QualityReason),
		}).
		Where(sq.Eq{"id": clip.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build analysis update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update clip analysis: %w", err)
	}
	return nil
}

// SetClipStatus updates only the processing status and error message.
func (s *Store) SetClipStatus(ctx context.Context, id int64, status ProcessingStatus, errorMessage string) error {
	processed := status == StatusReady || status == StatusSkipped
	query, args, err := sq.Update("downloaded_clips").
		SetMap(map[string]any{
			"updated_at":        time.Now().UTC().Format(time.RFC3339Nano),
			"processed":         processed,
			"processing_status": string(status),
			"error_message":     nullableString(errorMessage),
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set clip status: %w", err)
	}
	return nil
}

// DeleteClipsOlderThan removes clip rows downloaded before the cutoff and
// returns the removed records so callers can delete artifacts.
func (s *Store) DeleteClipsOlderThan(ctx context.Context, cutoff time.Time) ([]*DownloadedClip, error) {
	cutoffValue := cutoff.UTC().Format(time.RFC3339Nano)

	selectQuery, selectArgs, err := sq.Select(clipColumnList...).
		From("downloaded_clips").
		Where(sq.Lt{"downloaded_at": cutoffValue}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cleanup select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, selectQuery, selectArgs...)
	if err != nil {
		return nil, fmt.Errorf("query expired clips: %w", err)
	}
	expired, err := collectClips(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	deleteQuery, deleteArgs, err := sq.Delete("downloaded_clips").
		Where(sq.Lt{"downloaded_at": cutoffValue}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cleanup delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, fmt.Errorf("delete expired clips: %w", err)
	}
	return expired, nil
}

// CountClipsByStatus returns per-status clip counts.
func (s *Store) CountClipsByStatus(ctx context.Context) (map[ProcessingStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT processing_status, COUNT(1) FROM downloaded_clips GROUP BY processing_status`)
	if err != nil {
		return nil, fmt.Errorf("count clips: %w", err)
	}
	defer rows.Close()

	counts := make(map[ProcessingStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan clip count: %w", err)
		}
		counts[ProcessingStatus(status)] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(row rowScanner) (*DownloadedClip, error) {
	var (
		clip                                  DownloadedClip
		title, creator, broadcaster, game     sql.NullString
		filePath, errorMessage                sql.NullString
		generatedTitle, generatedDescription  sql.NullString
		tagsJSON, category, sentiment         sql.NullString
		bestUploadTime, hashtagsJSON, quality sql.NullString
		viewCount                             sql.NullInt64
		downloadedAt, updatedAt               sql.NullString
		status                                string
	)

	err := row.Scan(
		&clip.ID, &clip.ClipID, &clip.URL, &title, &creator, &broadcaster, &game,
		&viewCount, &clip.Duration, &filePath, &clip.FileSize, &downloadedAt, &updatedAt,
		&clip.Processed, &status, &errorMessage, &generatedTitle, &generatedDescription,
		&tagsJSON, &category, &clip.ViralScore, &sentiment, &clip.EstimatedViews,
		&bestUploadTime, &hashtagsJSON, &quality,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan clip: %w", err)
	}

	clip.Title = title.String
	clip.Creator = creator.String
	clip.Broadcaster = broadcaster.String
	clip.Game = game.String
	if viewCount.Valid {
		views := int(viewCount.Int64)
		clip.ViewCount = &views
	}
	clip.FilePath = filePath.String
	clip.DownloadedAt = parseTimeString(downloadedAt)
	clip.UpdatedAt = parseTimeString(updatedAt)
	clip.ProcessingStatus = ProcessingStatus(status)
	clip.ErrorMessage = errorMessage.String
	clip.GeneratedTitle = generatedTitle.String
	clip.GeneratedDescription = generatedDescription.String
	clip.Category = category.String
	clip.Sentiment = sentiment.String
	clip.BestUploadTime = bestUploadTime.String
	clip.QualityReason = quality.String

	if clip.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if clip.Hashtags, err = unmarshalStrings(hashtagsJSON); err != nil {
		return nil, fmt.Errorf("decode hashtags: %w", err)
	}
	return &clip, nil
}

func collectClips(rows *sql.Rows) ([]*DownloadedClip, error) {
	var clips []*DownloadedClip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

func marshalStrings(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalStrings(value sql.NullString) ([]string, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(value.String), &values); err != nil {
		return nil, err
	}
	return values, nil
}
