package list

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service is the read side of the repository for the CLI and the library:
// sequence, position and run history listings plus single sequence lookup.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Sequences returns every stored sequence sorted by name.
func (s *Service) Sequences(ctx context.Context) ([]model.Sequence, error) {
	sequences, err := s.repo.ListSequences(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list sequences: %w", err)
	}

	sort.Slice(sequences, func(i, j int) bool { return sequences[i].Name < sequences[j].Name })

	s.logger.Debugf("Listed %d sequences", len(sequences))
	return sequences, nil
}

// Sequence returns a single stored sequence by name.
func (s *Service) Sequence(ctx context.Context, name string) (*model.Sequence, error) {
	sequence, err := s.repo.GetSequence(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("sequence not found: %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get sequence: %w", err)
	}

	return sequence, nil
}

// Positions returns every stored position sorted by name.
func (s *Service) Positions(ctx context.Context) ([]model.Position, error) {
	positions, err := s.repo.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list positions: %w", err)
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].Name < positions[j].Name })

	s.logger.Debugf("Listed %d positions", len(positions))
	return positions, nil
}

// RunsRequest filters the run history listing.
type RunsRequest struct {
	// SequenceName limits the history to one sequence when not empty.
	SequenceName string
	// Limit caps the number of returned runs when positive.
	Limit int
}

// Runs returns the run history, newest first.
func (s *Service) Runs(ctx context.Context, req RunsRequest) ([]model.Run, error) {
	runs, err := s.repo.ListRuns(ctx, req.SequenceName, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	s.logger.Debugf("Listed %d runs", len(runs))
	return runs, nil
}
