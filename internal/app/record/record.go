package record

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/seqr/internal/input"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage"
)

// ServiceConfig is the configuration for the record service.
type ServiceConfig struct {
	Repository storage.Repository
	Input      input.Controller
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Input == nil {
		return fmt.Errorf("input controller is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service stores the current mouse position under a name.
type Service struct {
	repo   storage.Repository
	input  input.Controller
	logger log.Logger
}

// NewService creates a new record service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		input:  cfg.Input,
		logger: cfg.Logger,
	}, nil
}

// Request represents the record request parameters.
type Request struct {
	// Name is the name to store the position under. Recording an existing
	// name replaces its coordinates.
	Name string
	// Delay is how long to wait before sampling the pointer, giving the
	// user time to place it.
	Delay time.Duration
}

// Run waits the requested delay, reads the pointer position and upserts it.
func (s *Service) Run(ctx context.Context, req Request) (*model.Position, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("position name is required: %w", model.ErrNotValid)
	}

	for remaining := req.Delay; remaining > 0; remaining -= time.Second {
		s.logger.Infof("Recording position %q in %s, place the pointer now", req.Name, remaining)
		wait := time.Second
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	x, y, err := s.input.MousePosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read mouse position: %w", err)
	}

	position := model.Position{
		Name:      req.Name,
		X:         x,
		Y:         y,
		UpdatedAt: time.Now().UTC(),
	}
	if err := position.Validate(); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}

	if err := s.repo.UpsertPosition(ctx, position); err != nil {
		return nil, fmt.Errorf("could not store position: %w", err)
	}

	s.logger.Infof("Recorded position %q at (%d, %d)", position.Name, position.X, position.Y)
	return &position, nil
}
