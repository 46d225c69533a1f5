package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const runColumns = `id, run_id, channel, status, stage, clips_discovered, clips_downloaded,
	clips_processed, clips_ready, error_message, started_at, completed_at`

// CreateRun inserts a new in-progress run for the channel.
func (s *Store) CreateRun(ctx context.Context, channel string) (*WorkflowRun, error) {
	runID := uuid.NewString()
	now := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO workflow_runs (run_id, channel, status, stage, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID,
		channel,
		string(RunInProgress),
		StageCreated,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRun(ctx, id)
}

// GetRun loads a run by row id.
func (s *Store) GetRun(ctx context.Context, id int64) (*WorkflowRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM workflow_runs WHERE id = ?`, id)
	return scanRun(row)
}

// GetRunByRunID loads a run by its public identifier.
func (s *Store) GetRunByRunID(ctx context.Context, runID string) (*WorkflowRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM workflow_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// UpdateRun persists the run's mutable fields.
func (s *Store) UpdateRun(ctx context.Context, run *WorkflowRun) error {
	query, args, err := sq.Update("workflow_runs").
		SetMap(map[string]any{
			"status":           string(run.Status),
			"stage":            nullableString(run.Stage),
			"clips_discovered": run.ClipsDiscovered,
			"clips_downloaded": run.ClipsDownloaded,
			"clips_processed":  run.ClipsProcessed,
			"clips_ready":      run.ClipsReady,
			"error_message":    nullableString(run.ErrorMessage),
			"completed_at":     nullableTime(run.CompletedAt),
		}).
		Where(sq.Eq{"id": run.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Channel string
	Status  RunStatus
	Limit   int
}

// ListRuns returns runs newest first, optionally filtered.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]*WorkflowRun, error) {
	builder := sq.Select(columnList(runColumns)...).
		From("workflow_runs").
		OrderBy("id DESC")
	if filter.Channel != "" {
		builder = builder.Where(sq.Eq{"channel": filter.Channel})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build runs query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*WorkflowRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row rowScanner) (*WorkflowRun, error) {
	var (
		run                    WorkflowRun
		stage, errorMessage    sql.NullString
		status                 string
		startedAt, completedAt sql.NullString
	)

	err := row.Scan(
		&run.ID, &run.RunID, &run.Channel, &status, &stage,
		&run.ClipsDiscovered, &run.ClipsDownloaded, &run.ClipsProcessed, &run.ClipsReady,
		&errorMessage, &startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.Status = RunStatus(status)
	run.Stage = stage.String
	run.ErrorMessage = errorMessage.String
	run.StartedAt = parseTimeString(startedAt)
	run.CompletedAt = parseTimePtr(completedAt)
	return &run, nil
}
