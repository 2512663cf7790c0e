package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage"
)

var _ storage.Repository = (*MockRepository)(nil)

// MockRepository is a mock implementation of storage.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateSequence(ctx context.Context, s model.Sequence) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) GetSequence(ctx context.Context, name string) (*model.Sequence, error) {
	args := m.Called(ctx, name)
	var sequence *model.Sequence
	if v := args.Get(0); v != nil {
		sequence = v.(*model.Sequence)
	}
	return sequence, args.Error(1)
}

func (m *MockRepository) ListSequences(ctx context.Context) ([]model.Sequence, error) {
	args := m.Called(ctx)
	var sequences []model.Sequence
	if v := args.Get(0); v != nil {
		sequences = v.([]model.Sequence)
	}
	return sequences, args.Error(1)
}

func (m *MockRepository) UpdateSequence(ctx context.Context, s model.Sequence) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) DeleteSequence(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockRepository) UpsertPosition(ctx context.Context, p model.Position) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) GetPosition(ctx context.Context, name string) (*model.Position, error) {
	args := m.Called(ctx, name)
	var position *model.Position
	if v := args.Get(0); v != nil {
		position = v.(*model.Position)
	}
	return position, args.Error(1)
}

func (m *MockRepository) ListPositions(ctx context.Context) ([]model.Position, error) {
	args := m.Called(ctx)
	var positions []model.Position
	if v := args.Get(0); v != nil {
		positions = v.([]model.Position)
	}
	return positions, args.Error(1)
}

func (m *MockRepository) DeletePosition(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockRepository) CreateRun(ctx context.Context, r model.Run) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRepository) UpdateRun(ctx context.Context, r model.Run) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRepository) ListRuns(ctx context.Context, sequenceName string, limit int) ([]model.Run, error) {
	args := m.Called(ctx, sequenceName, limit)
	var runs []model.Run
	if v := args.Get(0); v != nil {
		runs = v.([]model.Run)
	}
	return runs, args.Error(1)
}
