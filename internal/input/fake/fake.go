package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/seqr/internal/input"
	"github.com/slok/seqr/internal/log"
)

// Call records a single operation received by the fake controller.
type Call struct {
	Op       string // "click", "drag" or "type_text".
	X        int
	Y        int
	ToX      int
	ToY      int
	Button   input.MouseButton
	Count    int
	Text     string
	Duration time.Duration
}

// ControllerConfig is the configuration for the fake input controller.
type ControllerConfig struct {
	// MouseX and MouseY are returned by MousePosition.
	MouseX int
	MouseY int
	Logger log.Logger
}

func (c *ControllerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "input.Fake"})
	return nil
}

// Controller is a fake implementation of input.Controller that records every
// call in order.
type Controller struct {
	calls  []Call
	mouseX int
	mouseY int
	err    error
	mu     sync.Mutex
	logger log.Logger
}

// NewController creates a new fake input controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{
		mouseX: cfg.MouseX,
		mouseY: cfg.MouseY,
		logger: cfg.Logger,
	}, nil
}

// Click records a click.
func (c *Controller) Click(ctx context.Context, x, y int, button input.MouseButton, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, Call{Op: "click", X: x, Y: y, Button: button, Count: count})
	c.logger.Debugf("Recorded click %s x%d at (%d, %d)", button, count, x, y)
	return nil
}

// Drag records a drag.
func (c *Controller) Drag(ctx context.Context, fromX, fromY, toX, toY int, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, Call{Op: "drag", X: fromX, Y: fromY, ToX: toX, ToY: toY, Duration: duration})
	c.logger.Debugf("Recorded drag from (%d, %d) to (%d, %d)", fromX, fromY, toX, toY)
	return nil
}

// TypeText records typed text.
func (c *Controller) TypeText(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, Call{Op: "type_text", Text: text})
	c.logger.Debugf("Recorded typed text (%d characters)", len(text))
	return nil
}

// MousePosition returns the configured pointer coordinates.
func (c *Controller) MousePosition(ctx context.Context) (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return 0, 0, c.err
	}
	return c.mouseX, c.mouseY, nil
}

// Fail makes every following call return the given error.
func (c *Controller) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls returns a copy of the recorded calls in order.
func (c *Controller) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	calls := make([]Call, len(c.calls))
	copy(calls, c.calls)
	return calls
}
