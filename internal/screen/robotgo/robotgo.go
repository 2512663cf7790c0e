package robotgo

import (
	"context"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
)

// CapturerConfig is the configuration for the robotgo screen capturer.
type CapturerConfig struct {
	Logger log.Logger
}

func (c *CapturerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "screen.Robotgo"})
	return nil
}

// Capturer captures frames of the primary display through robotgo.
type Capturer struct {
	logger log.Logger
}

// NewCapturer creates a new robotgo screen capturer.
func NewCapturer(cfg CapturerConfig) (*Capturer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Capturer{
		logger: cfg.Logger,
	}, nil
}

// Capture returns the current frame of the primary display.
func (c *Capturer) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("could not capture screen: %w", err)
	}

	return img, nil
}

// Check performs preflight checks for screen capture.
func (c *Capturer) Check(ctx context.Context) []model.CheckResult {
	results := []model.CheckResult{}

	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		results = append(results, model.CheckResult{
			ID:      "screen_size",
			Status:  model.CheckStatusError,
			Message: "Could not read the screen size, is a display available?",
		})
		return results
	}
	results = append(results, model.CheckResult{
		ID:      "screen_size",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("Screen size %dx%d", w, h),
	})

	img, err := robotgo.CaptureImg(0, 0, 1, 1)
	if err != nil || img == nil {
		results = append(results, model.CheckResult{
			ID:      "screen_capture",
			Status:  model.CheckStatusError,
			Message: "Could not capture a test frame",
		})
		return results
	}
	results = append(results, model.CheckResult{
		ID:      "screen_capture",
		Status:  model.CheckStatusOK,
		Message: "Screen capture available",
	})

	return results
}
