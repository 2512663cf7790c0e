package input

import (
	"context"
	"time"
)

// MouseButton identifies a mouse button.
type MouseButton string

const (
	// MouseButtonLeft is the left mouse button.
	MouseButtonLeft MouseButton = "left"
	// MouseButtonRight is the right mouse button.
	MouseButtonRight MouseButton = "right"
)

// Controller is the interface for injecting input into the desktop session.
type Controller interface {
	// Click moves the pointer to the given coordinate and clicks the button
	// count times (2 for a double click).
	Click(ctx context.Context, x, y int, button MouseButton, count int) error

	// Drag presses the left button at the origin, moves to the destination
	// over the given duration and releases.
	Drag(ctx context.Context, fromX, fromY, toX, toY int, duration time.Duration) error

	// TypeText types the given text into whatever currently has focus.
	TypeText(ctx context.Context, text string) error

	// MousePosition returns the current pointer coordinates.
	MousePosition(ctx context.Context) (x, y int, err error)
}
