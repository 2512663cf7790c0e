package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/seqr/internal/app/list"
	"github.com/slok/seqr/internal/app/record"
)

// SavePosition stores a named screen coordinate, replacing any previous one
// with the same name, and returns the stored copy.
func (c *Client) SavePosition(ctx context.Context, pos Position) (*Position, error) {
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}

	pos.UpdatedAt = time.Now().UTC()

	if err := c.repo.UpsertPosition(ctx, pos); err != nil {
		return nil, fmt.Errorf("could not save position: %w", err)
	}

	stored, err := c.repo.GetPosition(ctx, pos.Name)
	if err != nil {
		return nil, fmt.Errorf("could not get saved position: %w", err)
	}

	return stored, nil
}

// GetPosition returns a stored position by name.
func (c *Client) GetPosition(ctx context.Context, name string) (*Position, error) {
	return c.repo.GetPosition(ctx, name)
}

// ListPositions returns all stored positions sorted by name.
func (c *Client) ListPositions(ctx context.Context) ([]Position, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create list service: %w", err)
	}

	return svc.Positions(ctx)
}

// DeletePosition removes a stored position and returns it.
func (c *Client) DeletePosition(ctx context.Context, name string) (*Position, error) {
	pos, err := c.repo.GetPosition(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := c.repo.DeletePosition(ctx, name); err != nil {
		return nil, fmt.Errorf("could not delete position: %w", err)
	}

	return pos, nil
}

// RecordPosition waits the given delay and stores the current pointer
// coordinates under the given name. The coordinates come from the configured
// input controller, so the default fake controller records (0, 0).
func (c *Client) RecordPosition(ctx context.Context, name string, delay time.Duration) (*Position, error) {
	svc, err := record.NewService(record.ServiceConfig{
		Repository: c.repo,
		Input:      c.input,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create record service: %w", err)
	}

	return svc.Run(ctx, record.Request{Name: name, Delay: delay})
}
