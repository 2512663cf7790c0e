package recognize

import (
	"context"
	"image"

	"github.com/slok/seqr/internal/model"
)

// Recognizer is the interface for extracting text from captured frames.
type Recognizer interface {
	// ExtractText returns the text visible in the frame. A non-nil region
	// limits extraction to that area of the frame.
	ExtractText(ctx context.Context, frame image.Image, region *model.Region) (string, error)
}
