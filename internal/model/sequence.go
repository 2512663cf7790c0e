package model

import (
	"fmt"
	"time"
)

// Sequence is an ordered list of actions executed against the screen.
type Sequence struct {
	Name        string
	Description string
	// Loop restarts the sequence from the first action after the last one
	// completes, until stopped.
	Loop bool
	// StepDelay is slept between consecutive actions.
	StepDelay time.Duration
	Actions   []Action
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the sequence.
func (s *Sequence) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if len(s.Actions) == 0 {
		return fmt.Errorf("at least one action is required: %w", ErrNotValid)
	}
	if s.StepDelay < 0 {
		return fmt.Errorf("step delay must be non-negative: %w", ErrNotValid)
	}
	for i, a := range s.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// PositionNames returns the names of all positions the sequence references,
// deduplicated, in first-reference order.
func (s *Sequence) PositionNames() []string {
	seen := map[string]bool{}
	names := []string{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, a := range s.Actions {
		switch {
		case a.Click != nil:
			add(a.Click.Position)
		case a.Drag != nil:
			add(a.Drag.From)
			add(a.Drag.To)
		case a.TypeText != nil:
			add(a.TypeText.Position)
		}
	}

	return names
}

// TemplateNames returns the names of all templates the sequence references,
// deduplicated, in first-reference order. Searches over all loaded templates
// contribute nothing.
func (s *Sequence) TemplateNames() []string {
	seen := map[string]bool{}
	names := []string{}

	for _, a := range s.Actions {
		if a.TemplateSearch == nil || a.TemplateSearch.AllTemplates {
			continue
		}
		for _, t := range a.TemplateSearch.Templates {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			names = append(names, t)
		}
	}

	return names
}
