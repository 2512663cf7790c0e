package lib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/seqr/internal/app/list"
	"github.com/slok/seqr/internal/app/remove"
	"github.com/slok/seqr/internal/app/seqimport"
	"github.com/slok/seqr/internal/storage/io"
)

// SaveSequence stores a sequence, creating it or updating the one with the
// same name, and returns the stored copy.
func (c *Client) SaveSequence(ctx context.Context, seq Sequence) (*Sequence, error) {
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sequence: %w", err)
	}

	now := time.Now().UTC()
	if seq.CreatedAt.IsZero() {
		seq.CreatedAt = now
	}
	seq.UpdatedAt = now

	err := c.repo.CreateSequence(ctx, seq)
	if errors.Is(err, ErrAlreadyExists) {
		err = c.repo.UpdateSequence(ctx, seq)
	}
	if err != nil {
		return nil, fmt.Errorf("could not save sequence: %w", err)
	}

	stored, err := c.repo.GetSequence(ctx, seq.Name)
	if err != nil {
		return nil, fmt.Errorf("could not get saved sequence: %w", err)
	}

	return stored, nil
}

// GetSequence returns a stored sequence by name.
func (c *Client) GetSequence(ctx context.Context, name string) (*Sequence, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create list service: %w", err)
	}

	return svc.Sequence(ctx, name)
}

// ListSequences returns all stored sequences sorted by name.
func (c *Client) ListSequences(ctx context.Context) ([]Sequence, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create list service: %w", err)
	}

	return svc.Sequences(ctx)
}

// DeleteSequence removes a stored sequence and returns it.
func (c *Client) DeleteSequence(ctx context.Context, name string) (*Sequence, error) {
	svc, err := remove.NewService(remove.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create remove service: %w", err)
	}

	return svc.Run(ctx, remove.Request{SequenceName: name})
}

// ImportResult summarizes what a library import changed.
type ImportResult = seqimport.Result

// Import loads a YAML library file into storage. Positions are upserted,
// sequences are created or updated by name.
func (c *Client) Import(ctx context.Context, path string) (*ImportResult, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("could not resolve library path: %w", err)
		}
		path = abs
	}

	svc, err := seqimport.NewService(seqimport.ServiceConfig{
		Repository: c.repo,
		Library:    io.NewLibraryYAMLRepository(os.DirFS("/")),
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create import service: %w", err)
	}

	return svc.Run(ctx, seqimport.Request{Path: path[1:]})
}
