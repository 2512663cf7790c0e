package remove

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage"
)

// ServiceConfig is the configuration for the remove service.
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

// Service removes stored sequences.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the remove request parameters.
type Request struct {
	// SequenceName is the name of the sequence to remove.
	SequenceName string
}

// Run removes a sequence by name and returns the removed sequence.
func (s *Service) Run(ctx context.Context, req Request) (*model.Sequence, error) {
	s.logger.Debugf("removing sequence: %s", req.SequenceName)

	sequence, err := s.repo.GetSequence(ctx, req.SequenceName)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("sequence not found: %s: %w", req.SequenceName, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get sequence: %w", err)
	}

	if err := s.repo.DeleteSequence(ctx, sequence.Name); err != nil {
		return nil, fmt.Errorf("could not delete sequence: %w", err)
	}

	s.logger.Infof("Removed sequence: %s", sequence.Name)
	return sequence, nil
}
