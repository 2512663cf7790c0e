package robotgo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/slok/seqr/internal/input"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
)

// dragStepInterval is how often the pointer is moved while dragging.
const dragStepInterval = 16 * time.Millisecond

// ControllerConfig is the configuration for the robotgo input controller.
type ControllerConfig struct {
	Logger log.Logger
}

func (c *ControllerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "input.Robotgo"})
	return nil
}

// Controller injects mouse and keyboard input through robotgo.
type Controller struct {
	logger log.Logger
}

// NewController creates a new robotgo input controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{
		logger: cfg.Logger,
	}, nil
}

// Click moves the pointer and clicks.
func (c *Controller) Click(ctx context.Context, x, y int, button input.MouseButton, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("click count must be at least 1: %w", model.ErrNotValid)
	}

	robotgo.Move(x, y)
	switch count {
	case 1:
		robotgo.Click(string(button))
	case 2:
		robotgo.Click(string(button), true)
	default:
		for i := 0; i < count; i++ {
			robotgo.Click(string(button))
		}
	}

	c.logger.Debugf("Clicked %s x%d at (%d, %d)", button, count, x, y)
	return nil
}

// Drag presses at the origin, moves over the duration and releases.
func (c *Controller) Drag(ctx context.Context, fromX, fromY, toX, toY int, duration time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	robotgo.Move(fromX, fromY)
	robotgo.Toggle("left", "down")
	// Release even when the move is interrupted.
	defer robotgo.Toggle("left", "up")

	steps := int(duration / dragStepInterval)
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		nx := fromX + (toX-fromX)*i/steps
		ny := fromY + (toY-fromY)*i/steps
		robotgo.Move(nx, ny)
		if duration > 0 {
			time.Sleep(duration / time.Duration(steps))
		}
	}

	c.logger.Debugf("Dragged from (%d, %d) to (%d, %d) in %s", fromX, fromY, toX, toY, duration)
	return nil
}

// TypeText types the text into the focused control.
func (c *Controller) TypeText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	robotgo.TypeStr(text)

	c.logger.Debugf("Typed %d characters", len(text))
	return nil
}

// MousePosition returns the current pointer coordinates.
func (c *Controller) MousePosition(ctx context.Context) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	x, y := robotgo.GetMousePos()
	return x, y, nil
}

// Check performs preflight checks for input injection.
func (c *Controller) Check(ctx context.Context) []model.CheckResult {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return []model.CheckResult{{
			ID:      "input_session",
			Status:  model.CheckStatusError,
			Message: "Could not attach to a display session, input injection unavailable",
		}}
	}

	return []model.CheckResult{{
		ID:      "input_session",
		Status:  model.CheckStatusOK,
		Message: "Input injection available",
	}}
}
