package detect

import (
	"context"
	"image"

	"github.com/slok/seqr/internal/model"
)

// Detector is the interface for finding image templates in captured frames.
type Detector interface {
	// Templates returns the names of all loaded templates.
	Templates() []string

	// Match searches the frame for the given templates and returns the
	// detections at or above the minimum confidence. Requesting an unknown
	// template is an error; finding nothing is not.
	Match(ctx context.Context, frame image.Image, templates []string, minConfidence float64) ([]model.Match, error)
}
