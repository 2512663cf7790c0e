package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage/io"
	"github.com/slok/seqr/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateSequence creates a new sequence in the repository.
func (r *Repository) CreateSequence(ctx context.Context, s model.Sequence) error {
	actions, err := io.EncodeActions(s.Actions)
	if err != nil {
		return fmt.Errorf("could not encode actions: %w", err)
	}

	query := `
		INSERT INTO sequences (name, description, loop, step_delay_ms, actions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		s.Name,
		s.Description,
		s.Loop,
		s.StepDelay.Milliseconds(),
		string(actions),
		s.CreatedAt.Unix(),
		s.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: sequences.") {
			return fmt.Errorf("sequence already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert sequence: %w", err)
	}

	r.logger.Debugf("Created sequence in repository: %s", s.Name)
	return nil
}

// GetSequence retrieves a sequence by name.
func (r *Repository) GetSequence(ctx context.Context, name string) (*model.Sequence, error) {
	query := `
		SELECT name, description, loop, step_delay_ms, actions, created_at, updated_at
		FROM sequences
		WHERE name = ?
	`

	row := r.db.QueryRowContext(ctx, query, name)
	sequence, err := r.scanSequence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sequence %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query sequence: %w", err)
	}

	return &sequence, nil
}

// ListSequences returns all sequences ordered by name.
func (r *Repository) ListSequences(ctx context.Context) ([]model.Sequence, error) {
	query := `
		SELECT name, description, loop, step_delay_ms, actions, created_at, updated_at
		FROM sequences
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query sequences: %w", err)
	}
	defer rows.Close()

	var sequences []model.Sequence
	for rows.Next() {
		sequence, err := r.scanSequence(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		sequences = append(sequences, sequence)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sequences, nil
}

// UpdateSequence updates an existing sequence.
func (r *Repository) UpdateSequence(ctx context.Context, s model.Sequence) error {
	actions, err := io.EncodeActions(s.Actions)
	if err != nil {
		return fmt.Errorf("could not encode actions: %w", err)
	}

	query := `
		UPDATE sequences
		SET
			description = ?,
			loop = ?,
			step_delay_ms = ?,
			actions = ?,
			updated_at = ?
		WHERE name = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		s.Description,
		s.Loop,
		s.StepDelay.Milliseconds(),
		string(actions),
		s.UpdatedAt.Unix(),
		s.Name,
	)
	if err != nil {
		return fmt.Errorf("could not update sequence: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sequence %s: %w", s.Name, model.ErrNotFound)
	}

	r.logger.Debugf("Updated sequence in repository: %s", s.Name)
	return nil
}

// DeleteSequence deletes a sequence.
func (r *Repository) DeleteSequence(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sequences WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("could not delete sequence: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sequence %s: %w", name, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted sequence from repository: %s", name)
	return nil
}

// UpsertPosition creates or replaces a position by name.
func (r *Repository) UpsertPosition(ctx context.Context, p model.Position) error {
	query := `
		INSERT INTO positions (name, x, y, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, p.Name, p.X, p.Y, p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("could not upsert position: %w", err)
	}

	r.logger.Debugf("Upserted position in repository: %s", p.Name)
	return nil
}

// GetPosition retrieves a position by name.
func (r *Repository) GetPosition(ctx context.Context, name string) (*model.Position, error) {
	query := `SELECT name, x, y, updated_at FROM positions WHERE name = ?`

	row := r.db.QueryRowContext(ctx, query, name)
	position, err := r.scanPosition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("position %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query position: %w", err)
	}

	return &position, nil
}

// ListPositions returns all positions ordered by name.
func (r *Repository) ListPositions(ctx context.Context) ([]model.Position, error) {
	query := `SELECT name, x, y, updated_at FROM positions ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query positions: %w", err)
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		position, err := r.scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		positions = append(positions, position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return positions, nil
}

// DeletePosition deletes a position.
func (r *Repository) DeletePosition(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("could not delete position: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("position %s: %w", name, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted position from repository: %s", name)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanSequence(s scanner) (model.Sequence, error) {
	var sequence model.Sequence
	var stepDelayMS int64
	var actions string
	var createdAt, updatedAt sql.NullInt64

	err := s.Scan(
		&sequence.Name,
		&sequence.Description,
		&sequence.Loop,
		&stepDelayMS,
		&actions,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Sequence{}, err
	}

	decoded, err := io.DecodeActions([]byte(actions))
	if err != nil {
		return model.Sequence{}, fmt.Errorf("could not decode actions: %w", err)
	}
	sequence.Actions = decoded
	sequence.StepDelay = time.Duration(stepDelayMS) * time.Millisecond

	if !createdAt.Valid || !updatedAt.Valid {
		return model.Sequence{}, fmt.Errorf("sequence timestamps are required")
	}
	sequence.CreatedAt = timeFromUnix(createdAt.Int64)
	sequence.UpdatedAt = timeFromUnix(updatedAt.Int64)

	return sequence, nil
}

func (r *Repository) scanPosition(s scanner) (model.Position, error) {
	var position model.Position
	var updatedAt sql.NullInt64

	err := s.Scan(&position.Name, &position.X, &position.Y, &updatedAt)
	if err != nil {
		return model.Position{}, err
	}

	if !updatedAt.Valid {
		return model.Position{}, fmt.Errorf("position timestamp is required")
	}
	position.UpdatedAt = timeFromUnix(updatedAt.Int64)

	return position, nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
