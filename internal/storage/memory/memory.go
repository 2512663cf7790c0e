package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	sequences map[string]model.Sequence
	positions map[string]model.Position
	runs      map[string]model.Run
	// runOrder keeps run IDs in creation order so listings stay stable.
	runOrder []string
	mu       sync.RWMutex
	logger   log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		sequences: make(map[string]model.Sequence),
		positions: make(map[string]model.Position),
		runs:      make(map[string]model.Run),
		logger:    cfg.Logger,
	}, nil
}

// CreateSequence creates a new sequence in the repository.
func (r *Repository) CreateSequence(ctx context.Context, s model.Sequence) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sequences[s.Name]; ok {
		return fmt.Errorf("sequence with name %s: %w", s.Name, model.ErrAlreadyExists)
	}

	r.sequences[s.Name] = s
	r.logger.Debugf("Created sequence in repository: %s", s.Name)

	return nil
}

// GetSequence retrieves a sequence by name.
func (r *Repository) GetSequence(ctx context.Context, name string) (*model.Sequence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sequence, ok := r.sequences[name]
	if !ok {
		return nil, fmt.Errorf("sequence %s: %w", name, model.ErrNotFound)
	}

	// Return a copy
	sequenceCopy := sequence
	return &sequenceCopy, nil
}

// ListSequences returns all sequences.
func (r *Repository) ListSequences(ctx context.Context) ([]model.Sequence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sequences := make([]model.Sequence, 0, len(r.sequences))
	for _, sequence := range r.sequences {
		sequences = append(sequences, sequence)
	}

	return sequences, nil
}

// UpdateSequence updates an existing sequence.
func (r *Repository) UpdateSequence(ctx context.Context, s model.Sequence) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sequences[s.Name]; !ok {
		return fmt.Errorf("sequence %s: %w", s.Name, model.ErrNotFound)
	}

	r.sequences[s.Name] = s
	r.logger.Debugf("Updated sequence in repository: %s", s.Name)

	return nil
}

// DeleteSequence deletes a sequence.
func (r *Repository) DeleteSequence(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sequences[name]; !ok {
		return fmt.Errorf("sequence %s: %w", name, model.ErrNotFound)
	}

	delete(r.sequences, name)
	r.logger.Debugf("Deleted sequence from repository: %s", name)

	return nil
}

// UpsertPosition creates or replaces a position.
func (r *Repository) UpsertPosition(ctx context.Context, p model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.positions[p.Name] = p
	r.logger.Debugf("Upserted position in repository: %s", p.Name)

	return nil
}

// GetPosition retrieves a position by name.
func (r *Repository) GetPosition(ctx context.Context, name string) (*model.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	position, ok := r.positions[name]
	if !ok {
		return nil, fmt.Errorf("position %s: %w", name, model.ErrNotFound)
	}

	// Return a copy
	positionCopy := position
	return &positionCopy, nil
}

// ListPositions returns all positions.
func (r *Repository) ListPositions(ctx context.Context) ([]model.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	positions := make([]model.Position, 0, len(r.positions))
	for _, position := range r.positions {
		positions = append(positions, position)
	}

	return positions, nil
}

// DeletePosition deletes a position.
func (r *Repository) DeletePosition(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.positions[name]; !ok {
		return fmt.Errorf("position %s: %w", name, model.ErrNotFound)
	}

	delete(r.positions, name)
	r.logger.Debugf("Deleted position from repository: %s", name)

	return nil
}

// CreateRun creates a new run in the repository.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("run with id %s: %w", run.ID, model.ErrAlreadyExists)
	}

	r.runs[run.ID] = run
	r.runOrder = append(r.runOrder, run.ID)
	r.logger.Debugf("Created run in repository: %s", run.ID)

	return nil
}

// UpdateRun updates an existing run.
func (r *Repository) UpdateRun(ctx context.Context, run model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.runs[run.ID] = run
	r.logger.Debugf("Updated run in repository: %s", run.ID)

	return nil
}

// ListRuns returns runs newest first, optionally filtered and capped.
func (r *Repository) ListRuns(ctx context.Context, sequenceName string, limit int) ([]model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := []model.Run{}
	for i := len(r.runOrder) - 1; i >= 0; i-- {
		run := r.runs[r.runOrder[i]]
		if sequenceName != "" && run.SequenceName != sequenceName {
			continue
		}
		runs = append(runs, run)
		if limit > 0 && len(runs) >= limit {
			break
		}
	}

	return runs, nil
}
