package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slok/seqr/internal/detect"
	"github.com/slok/seqr/internal/input"
	"github.com/slok/seqr/internal/interrupt"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/notify"
	"github.com/slok/seqr/internal/overlay"
	"github.com/slok/seqr/internal/recognize"
	"github.com/slok/seqr/internal/screen"
)

const (
	defaultSearchInterval  = 33 * time.Millisecond
	defaultTextInterval    = 100 * time.Millisecond
	defaultControlInterval = 25 * time.Millisecond
	// maxInterval caps every polling interval so stop requests are always
	// observed within 100ms.
	maxInterval = 100 * time.Millisecond
	// focusSettleDelay is slept between focusing a target and typing into it.
	focusSettleDelay = 100 * time.Millisecond
)

// errPausedMidAction aborts a long running action when a pause is observed at
// a tick boundary. The step index does not advance, resuming re-dispatches
// the same action.
var errPausedMidAction = errors.New("paused mid action")

// PositionResolver resolves position names into screen coordinates.
type PositionResolver interface {
	GetPosition(ctx context.Context, name string) (*model.Position, error)
}

// Config is the configuration for the executor.
type Config struct {
	Positions  PositionResolver
	Input      input.Controller
	Screen     screen.Capturer
	Detector   detect.Detector
	Recognizer recognize.Recognizer
	// Interrupt is the emergency stop source, polled at every suspension
	// point. Defaults to a source that never stops.
	Interrupt interrupt.Source
	// Overlay receives live match sets during template searches. Defaults
	// to a discarding overlay.
	Overlay overlay.Overlay
	// Notifier signals the first match of a search when the action asks for
	// it. Defaults to a discarding notifier.
	Notifier notify.Notifier
	// Simulate logs every action instead of touching the input, screen,
	// detector and recognizer collaborators. Position resolution, state
	// transitions, events and delays behave as in a real run.
	Simulate bool
	// StepDelay overrides the sequence's own inter action delay when positive.
	StepDelay time.Duration
	// Loop overrides the sequence's own loop flag when set.
	Loop *bool
	// SearchInterval is the template search polling interval.
	SearchInterval time.Duration
	// TextInterval is the text wait polling interval.
	TextInterval time.Duration
	// ControlInterval is the pause/stop polling interval used while holding
	// at a suspension point.
	ControlInterval time.Duration
	Logger          log.Logger
}

func (c *Config) defaults() error {
	if c.Positions == nil {
		return fmt.Errorf("position resolver is required")
	}
	if c.Input == nil {
		return fmt.Errorf("input controller is required")
	}
	if c.Screen == nil {
		return fmt.Errorf("screen capturer is required")
	}
	if c.Detector == nil {
		return fmt.Errorf("detector is required")
	}
	if c.Recognizer == nil {
		return fmt.Errorf("recognizer is required")
	}
	if c.Interrupt == nil {
		c.Interrupt = interrupt.None
	}
	if c.Overlay == nil {
		c.Overlay = overlay.Noop
	}
	if c.Notifier == nil {
		c.Notifier = notify.Noop
	}
	if c.SearchInterval <= 0 {
		c.SearchInterval = defaultSearchInterval
	}
	if c.TextInterval <= 0 {
		c.TextInterval = defaultTextInterval
	}
	if c.ControlInterval <= 0 {
		c.ControlInterval = defaultControlInterval
	}
	c.SearchInterval = min(c.SearchInterval, maxInterval)
	c.TextInterval = min(c.TextInterval, maxInterval)
	c.ControlInterval = min(c.ControlInterval, maxInterval)
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "executor.Executor"})
	return nil
}

// Executor runs sequences of actions against the screen, one action at a
// time, under pause/resume/step/stop control.
//
// Run executes on the calling goroutine; the control methods are safe to
// call from any other goroutine while it is in flight.
type Executor struct {
	positions  PositionResolver
	input      input.Controller
	screen     screen.Capturer
	detector   detect.Detector
	recognizer recognize.Recognizer
	interrupt  interrupt.Source
	overlay    overlay.Overlay
	notifier   notify.Notifier

	simulate        bool
	stepDelay       time.Duration
	loop            *bool
	searchInterval  time.Duration
	textInterval    time.Duration
	controlInterval time.Duration

	bus    *Bus
	logger log.Logger

	status   model.RunStatus
	stopReq  bool
	stepReq  bool
	stepping bool
	mu       sync.Mutex
}

// New creates a new executor.
func New(cfg Config) (*Executor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Executor{
		positions:       cfg.Positions,
		input:           cfg.Input,
		screen:          cfg.Screen,
		detector:        cfg.Detector,
		recognizer:      cfg.Recognizer,
		interrupt:       cfg.Interrupt,
		overlay:         cfg.Overlay,
		notifier:        cfg.Notifier,
		simulate:        cfg.Simulate,
		stepDelay:       cfg.StepDelay,
		loop:            cfg.Loop,
		searchInterval:  cfg.SearchInterval,
		textInterval:    cfg.TextInterval,
		controlInterval: cfg.ControlInterval,
		bus:             NewBus(),
		logger:          cfg.Logger,
		status:          model.RunStatusIdle,
	}, nil
}

// Events returns the bus publishing this executor's execution events.
func (e *Executor) Events() *Bus {
	return e.bus
}

// Status returns the current execution status.
func (e *Executor) Status() model.RunStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Run executes the sequence and blocks until it finishes, returning the
// terminal status: completed, stopped (user stop or stop key, never an
// error) or failed. The executor is idle again by the time Run returns.
//
// Only one run can be in flight, concurrent calls fail with
// model.ErrAlreadyRunning.
func (e *Executor) Run(ctx context.Context, seq model.Sequence) (model.RunStatus, error) {
	e.mu.Lock()
	if e.status != model.RunStatusIdle {
		st := e.status
		e.mu.Unlock()
		return st, fmt.Errorf("execution in progress: %w", model.ErrAlreadyRunning)
	}
	e.status = model.RunStatusRunning
	e.stopReq = false
	e.stepReq = false
	e.stepping = false
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.status = model.RunStatusIdle
		e.stopReq = false
		e.stepReq = false
		e.stepping = false
		e.mu.Unlock()
	}()

	if err := seq.Validate(); err != nil {
		err = fmt.Errorf("invalid sequence: %w", err)
		e.publishError(-1, err)
		return model.RunStatusFailed, err
	}

	loop := seq.Loop
	if e.loop != nil {
		loop = *e.loop
	}
	stepDelay := seq.StepDelay
	if e.stepDelay > 0 {
		stepDelay = e.stepDelay
	}

	e.logger.Infof("Executing sequence %q (%d actions, loop: %t, simulate: %t)", seq.Name, len(seq.Actions), loop, e.simulate)

	idx := 0
	for {
		stepped, err := e.gate(ctx)
		if err != nil {
			e.logger.Infof("Execution stopped")
			return model.RunStatusStopped, nil
		}

		e.setStepping(stepped)
		err = e.dispatch(ctx, idx, seq.Actions[idx])
		e.setStepping(false)

		switch {
		case errors.Is(err, errPausedMidAction):
			// Same index, the gate holds until resume, step or stop.
			continue
		case errors.Is(err, model.ErrInterrupted):
			e.logger.Infof("Execution stopped")
			return model.RunStatusStopped, nil
		case err != nil:
			e.publishError(idx, err)
			e.logger.Errorf("Step %d failed: %v", idx, err)
			return model.RunStatusFailed, err
		}

		e.bus.Publish(Event{Type: EventStepCompleted, Step: idx, At: time.Now().UTC()})
		e.logger.Debugf("Step %d (%s) completed", idx, seq.Actions[idx].Kind)
		idx++

		if idx >= len(seq.Actions) {
			if !loop {
				e.bus.Publish(Event{Type: EventSequenceCompleted, Step: idx - 1, At: time.Now().UTC()})
				e.logger.Infof("Sequence %q completed", seq.Name)
				return model.RunStatusCompleted, nil
			}
			idx = 0
			e.logger.Debugf("Restarting sequence %q", seq.Name)
		}

		if stepDelay > 0 {
			if err := e.sleep(ctx, stepDelay); err != nil {
				if errors.Is(err, errPausedMidAction) {
					continue
				}
				e.logger.Infof("Execution stopped")
				return model.RunStatusStopped, nil
			}
		}
	}
}

// Pause suspends execution at the next suspension point: before the next
// action, or aborting the tick loop of a long running action without
// advancing the step index.
func (e *Executor) Pause() error {
	e.mu.Lock()
	if e.status != model.RunStatusRunning {
		st := e.status
		e.mu.Unlock()
		return fmt.Errorf("can only pause a running execution (status %s): %w", st, model.ErrNotValid)
	}
	e.status = model.RunStatusPaused
	e.mu.Unlock()

	e.bus.Publish(Event{Type: EventPaused, At: time.Now().UTC()})
	e.logger.Infof("Execution paused")
	return nil
}

// Resume continues a paused execution at the current step index.
func (e *Executor) Resume() error {
	e.mu.Lock()
	if e.status != model.RunStatusPaused {
		st := e.status
		e.mu.Unlock()
		return fmt.Errorf("can only resume a paused execution (status %s): %w", st, model.ErrNotValid)
	}
	e.status = model.RunStatusRunning
	e.mu.Unlock()

	e.bus.Publish(Event{Type: EventResumed, At: time.Now().UTC()})
	e.logger.Infof("Execution resumed")
	return nil
}

// Step dispatches exactly one action of a paused execution. The execution
// stays paused afterwards.
func (e *Executor) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != model.RunStatusPaused {
		return fmt.Errorf("can only step a paused execution (status %s): %w", e.status, model.ErrNotValid)
	}
	e.stepReq = true
	return nil
}

// Stop aborts the execution. The request is observed within one control
// tick at any suspension point and the run finishes as stopped, silently.
func (e *Executor) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == model.RunStatusIdle {
		return fmt.Errorf("no execution in progress: %w", model.ErrNotValid)
	}
	e.stopReq = true
	return nil
}

// gate blocks while the execution is paused, polling for control changes.
// It returns whether the next dispatch is a granted single step, or
// model.ErrInterrupted when a stop is observed.
func (e *Executor) gate(ctx context.Context) (stepped bool, err error) {
	for {
		if e.interrupted(ctx) {
			return false, model.ErrInterrupted
		}

		e.mu.Lock()
		if e.status != model.RunStatusPaused {
			e.mu.Unlock()
			return false, nil
		}
		if e.stepReq {
			e.stepReq = false
			e.mu.Unlock()
			return true, nil
		}
		e.mu.Unlock()

		time.Sleep(e.controlInterval)
	}
}

// checkpoint is called by long running actions at every tick boundary.
func (e *Executor) checkpoint(ctx context.Context) error {
	if e.interrupted(ctx) {
		return model.ErrInterrupted
	}

	e.mu.Lock()
	paused := e.status == model.RunStatusPaused && !e.stepping
	e.mu.Unlock()

	if paused {
		return errPausedMidAction
	}
	return nil
}

// interrupted reports whether any stop signal is active: Stop call, the
// emergency stop source or context cancellation.
func (e *Executor) interrupted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}

	e.mu.Lock()
	stop := e.stopReq
	e.mu.Unlock()

	return stop || e.interrupt.StopRequested()
}

// sleep waits for the duration in short ticks, honoring stop and pause.
func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)
	for {
		if err := e.checkpoint(ctx); err != nil {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		time.Sleep(min(remaining, e.controlInterval))
	}
}

func (e *Executor) setStepping(v bool) {
	e.mu.Lock()
	e.stepping = v
	e.mu.Unlock()
}

func (e *Executor) publishError(step int, err error) {
	e.bus.Publish(Event{Type: EventError, Step: step, Err: err.Error(), At: time.Now().UTC()})
}
