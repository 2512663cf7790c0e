package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/seqr/internal/model"
)

// LibraryYAMLRepository loads sequence and position libraries from YAML
// files.
type LibraryYAMLRepository struct {
	fs fs.FS
}

// NewLibraryYAMLRepository creates a new YAML library repository.
func NewLibraryYAMLRepository(filesystem fs.FS) *LibraryYAMLRepository {
	return &LibraryYAMLRepository{fs: filesystem}
}

// GetLibrary loads a library from a YAML file and returns a validated domain
// model.
func (r *LibraryYAMLRepository) GetLibrary(ctx context.Context, path string) (model.Library, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Library{}, fmt.Errorf("reading library file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Library{}, ctx.Err()
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return model.Library{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := lib.validate(); err != nil {
		return model.Library{}, fmt.Errorf("invalid library: %w", err)
	}

	library := lib.toModel()
	if err := library.Validate(); err != nil {
		return model.Library{}, fmt.Errorf("invalid library: %w", err)
	}

	return library, nil
}

// Library represents the YAML structure for a library file.
type Library struct {
	Positions []Position `yaml:"positions,omitempty"`
	Sequences []Sequence `yaml:"sequences,omitempty"`
}

// Position represents the YAML structure for a named screen position.
type Position struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// Sequence represents the YAML structure for a sequence.
type Sequence struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Loop        bool     `yaml:"loop,omitempty"`
	StepDelayMS int      `yaml:"step_delay_ms,omitempty"`
	Actions     []Action `yaml:"actions"`
}

func (l Library) validate() error {
	for i, p := range l.Positions {
		if p.Name == "" {
			return fmt.Errorf("position %d: name is required", i)
		}
	}

	for i, s := range l.Sequences {
		if s.Name == "" {
			return fmt.Errorf("sequence %d: name is required", i)
		}
		if len(s.Actions) == 0 {
			return fmt.Errorf("sequence %s: at least one action is required", s.Name)
		}
		for j, a := range s.Actions {
			if err := a.validate(); err != nil {
				return fmt.Errorf("sequence %s action %d: %w", s.Name, j, err)
			}
		}
	}

	return nil
}

func (l Library) toModel() model.Library {
	now := time.Now().UTC()

	library := model.Library{}
	for _, p := range l.Positions {
		library.Positions = append(library.Positions, model.Position{
			Name:      p.Name,
			X:         p.X,
			Y:         p.Y,
			UpdatedAt: now,
		})
	}

	for _, s := range l.Sequences {
		seq := model.Sequence{
			Name:        s.Name,
			Description: s.Description,
			Loop:        s.Loop,
			StepDelay:   msToDuration(s.StepDelayMS),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, a := range s.Actions {
			seq.Actions = append(seq.Actions, a.toModel())
		}
		library.Sequences = append(library.Sequences, seq)
	}

	return library
}
