package fake

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/slok/seqr/internal/log"
)

// CapturerConfig is the configuration for the fake screen capturer.
type CapturerConfig struct {
	// Frames is served in order, one per Capture call. The last frame
	// repeats once the list is exhausted. Nil entries are valid and mean
	// "no frame available this tick". An empty list always serves nil.
	Frames []image.Image
	Logger log.Logger
}

func (c *CapturerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "screen.Fake"})
	return nil
}

// Capturer is a fake implementation of screen.Capturer that serves scripted
// frames and records how many times it was called.
type Capturer struct {
	frames []image.Image
	calls  int
	err    error
	mu     sync.Mutex
	logger log.Logger
}

// NewCapturer creates a new fake screen capturer.
func NewCapturer(cfg CapturerConfig) (*Capturer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Capturer{
		frames: cfg.Frames,
		logger: cfg.Logger,
	}, nil
}

// Capture returns the next scripted frame.
func (c *Capturer) Capture(ctx context.Context) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if len(c.frames) == 0 {
		return nil, nil
	}

	idx := c.calls - 1
	if idx >= len(c.frames) {
		idx = len(c.frames) - 1
	}

	return c.frames[idx], nil
}

// Fail makes every following Capture call return the given error.
func (c *Capturer) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls returns how many times Capture was called.
func (c *Capturer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
