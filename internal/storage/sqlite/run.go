package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/slok/seqr/internal/model"
)

// CreateRun creates a new run record in the repository.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	var finishedAt *int64
	if run.FinishedAt != nil {
		u := run.FinishedAt.Unix()
		finishedAt = &u
	}

	query := `
		INSERT INTO runs (id, sequence_name, status, simulated, steps_done, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.SequenceName,
		run.Status,
		run.Simulated,
		run.StepsDone,
		run.Error,
		run.StartedAt.Unix(),
		finishedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.") {
			return fmt.Errorf("run already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	r.logger.Debugf("Created run in repository: %s", run.ID)
	return nil
}

// UpdateRun updates an existing run record.
func (r *Repository) UpdateRun(ctx context.Context, run model.Run) error {
	var finishedAt *int64
	if run.FinishedAt != nil {
		u := run.FinishedAt.Unix()
		finishedAt = &u
	}

	query := `
		UPDATE runs
		SET
			status = ?,
			steps_done = ?,
			error = ?,
			finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, run.Status, run.StepsDone, run.Error, finishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("could not update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated run in repository: %s", run.ID)
	return nil
}

// ListRuns returns runs newest first, filtered by sequence name when not
// empty, capped at limit when positive.
func (r *Repository) ListRuns(ctx context.Context, sequenceName string, limit int) ([]model.Run, error) {
	query := `
		SELECT id, sequence_name, status, simulated, steps_done, error, started_at, finished_at
		FROM runs
	`
	args := []any{}
	if sequenceName != "" {
		query += ` WHERE sequence_name = ?`
		args = append(args, sequenceName)
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

func (r *Repository) scanRun(s scanner) (model.Run, error) {
	var run model.Run
	var startedAt, finishedAt sql.NullInt64

	err := s.Scan(
		&run.ID,
		&run.SequenceName,
		&run.Status,
		&run.Simulated,
		&run.StepsDone,
		&run.Error,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return model.Run{}, err
	}

	if !startedAt.Valid {
		return model.Run{}, fmt.Errorf("started_at is required")
	}
	run.StartedAt = timeFromUnix(startedAt.Int64)

	if finishedAt.Valid {
		t := timeFromUnix(finishedAt.Int64)
		run.FinishedAt = &t
	}

	return run, nil
}
