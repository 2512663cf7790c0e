package model

import (
	"fmt"
)

// Library is a portable bundle of positions and sequences, the unit an
// import works on.
type Library struct {
	Positions []Position
	Sequences []Sequence
}

// Validate validates the library and rejects duplicate names.
func (l *Library) Validate() error {
	if len(l.Positions) == 0 && len(l.Sequences) == 0 {
		return fmt.Errorf("library is empty: %w", ErrNotValid)
	}

	seenPositions := map[string]bool{}
	for i, p := range l.Positions {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("position %d: %w", i, err)
		}
		if seenPositions[p.Name] {
			return fmt.Errorf("duplicated position %q: %w", p.Name, ErrNotValid)
		}
		seenPositions[p.Name] = true
	}

	seenSequences := map[string]bool{}
	for i, s := range l.Sequences {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sequence %d: %w", i, err)
		}
		if seenSequences[s.Name] {
			return fmt.Errorf("duplicated sequence %q: %w", s.Name, ErrNotValid)
		}
		seenSequences[s.Name] = true
	}

	return nil
}
