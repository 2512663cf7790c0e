package storage

import (
	"context"

	"github.com/slok/seqr/internal/model"
)

// Repository is the interface for sequence, position and run persistence.
// Sequences and positions are addressed by name, runs by ULID.
type Repository interface {
	CreateSequence(ctx context.Context, s model.Sequence) error
	GetSequence(ctx context.Context, name string) (*model.Sequence, error)
	ListSequences(ctx context.Context) ([]model.Sequence, error)
	UpdateSequence(ctx context.Context, s model.Sequence) error
	DeleteSequence(ctx context.Context, name string) error

	UpsertPosition(ctx context.Context, p model.Position) error
	GetPosition(ctx context.Context, name string) (*model.Position, error)
	ListPositions(ctx context.Context) ([]model.Position, error)
	DeletePosition(ctx context.Context, name string) error

	CreateRun(ctx context.Context, r model.Run) error
	UpdateRun(ctx context.Context, r model.Run) error
	// ListRuns returns runs newest first, filtered by sequence name when not
	// empty, capped at limit when positive.
	ListRuns(ctx context.Context, sequenceName string, limit int) ([]model.Run, error)
}
