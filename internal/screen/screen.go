package screen

import (
	"context"
	"image"
)

// Capturer is the interface for obtaining frames of the live screen.
type Capturer interface {
	// Capture returns the current frame. A nil frame with a nil error means
	// no frame is available at this instant; polling callers treat it as a
	// miss for the current tick, not as a failure.
	Capture(ctx context.Context) (image.Image, error)
}
