package model

import (
	"fmt"
	"time"
)

// Position is a named absolute screen coordinate.
type Position struct {
	Name      string
	X         int
	Y         int
	UpdatedAt time.Time
}

// Validate validates the position.
func (p *Position) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("coordinates must be non-negative: %w", ErrNotValid)
	}
	return nil
}

// Region is a rectangular screen area.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Validate validates the region.
func (r *Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("region width and height must be positive: %w", ErrNotValid)
	}
	return nil
}

// Match is a single template detection in a captured frame.
type Match struct {
	Template   string
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
}
