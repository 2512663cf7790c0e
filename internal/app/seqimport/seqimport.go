package seqimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage"
)

// LibraryGetter loads position and sequence libraries from files.
type LibraryGetter interface {
	GetLibrary(ctx context.Context, path string) (model.Library, error)
}

// ServiceConfig is the configuration for the import service.
type ServiceConfig struct {
	Repository storage.Repository
	Library    LibraryGetter
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Library == nil {
		return fmt.Errorf("library loader is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service imports library files into the repository.
type Service struct {
	repo    storage.Repository
	library LibraryGetter
	logger  log.Logger
}

// NewService creates a new import service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		library: cfg.Library,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the import request parameters.
type Request struct {
	// Path is the library file path inside the loader's filesystem.
	Path string
}

// Result summarizes what an import did.
type Result struct {
	PositionsImported int
	SequencesCreated  int
	SequencesUpdated  int
}

// Run loads a library file and upserts its positions and sequences.
// Positions always replace existing ones, sequences are created or, when the
// name is already taken, updated in place.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	lib, err := s.library.GetLibrary(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load library: %w", err)
	}

	result := &Result{}

	for _, position := range lib.Positions {
		if err := s.repo.UpsertPosition(ctx, position); err != nil {
			return nil, fmt.Errorf("could not import position %q: %w", position.Name, err)
		}
		result.PositionsImported++
	}

	for _, sequence := range lib.Sequences {
		err := s.repo.CreateSequence(ctx, sequence)
		switch {
		case err == nil:
			result.SequencesCreated++
		case errors.Is(err, model.ErrAlreadyExists):
			if err := s.repo.UpdateSequence(ctx, sequence); err != nil {
				return nil, fmt.Errorf("could not update sequence %q: %w", sequence.Name, err)
			}
			result.SequencesUpdated++
		default:
			return nil, fmt.Errorf("could not import sequence %q: %w", sequence.Name, err)
		}
	}

	s.logger.Infof("Imported %d positions, %d sequences created, %d sequences updated",
		result.PositionsImported, result.SequencesCreated, result.SequencesUpdated)
	return result, nil
}
