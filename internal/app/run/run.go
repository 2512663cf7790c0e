package run

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/seqr/internal/detect"
	"github.com/slok/seqr/internal/executor"
	"github.com/slok/seqr/internal/input"
	"github.com/slok/seqr/internal/interrupt"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/notify"
	"github.com/slok/seqr/internal/overlay"
	"github.com/slok/seqr/internal/recognize"
	"github.com/slok/seqr/internal/screen"
	"github.com/slok/seqr/internal/storage"
)

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Repository storage.Repository
	Screen     screen.Capturer
	Input      input.Controller
	Detector   detect.Detector
	Recognizer recognize.Recognizer
	// Interrupt is the optional emergency stop source.
	Interrupt interrupt.Source
	// Overlay is the optional live match observer.
	Overlay overlay.Overlay
	// Notifier is the optional match notifier.
	Notifier notify.Notifier
	// SearchInterval, TextInterval and ControlInterval tune the executor
	// polling loops. Zero values use the executor defaults.
	SearchInterval  time.Duration
	TextInterval    time.Duration
	ControlInterval time.Duration
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Screen == nil {
		return fmt.Errorf("screen capturer is required")
	}

	if c.Input == nil {
		return fmt.Errorf("input controller is required")
	}

	if c.Detector == nil {
		return fmt.Errorf("detector is required")
	}

	if c.Recognizer == nil {
		return fmt.Errorf("recognizer is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service executes stored sequences and keeps their run records.
type Service struct {
	repo       storage.Repository
	screen     screen.Capturer
	input      input.Controller
	detector   detect.Detector
	recognizer recognize.Recognizer
	interrupt  interrupt.Source
	overlay    overlay.Overlay
	notifier   notify.Notifier

	searchInterval  time.Duration
	textInterval    time.Duration
	controlInterval time.Duration

	logger log.Logger

	current *executor.Executor
	mu      sync.Mutex
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:            cfg.Repository,
		screen:          cfg.Screen,
		input:           cfg.Input,
		detector:        cfg.Detector,
		recognizer:      cfg.Recognizer,
		interrupt:       cfg.Interrupt,
		overlay:         cfg.Overlay,
		notifier:        cfg.Notifier,
		searchInterval:  cfg.SearchInterval,
		textInterval:    cfg.TextInterval,
		controlInterval: cfg.ControlInterval,
		logger:          cfg.Logger,
	}, nil
}

// Request represents the run request parameters.
type Request struct {
	// SequenceName is the name of the stored sequence to execute.
	SequenceName string
	// Simulate logs every action instead of dispatching input.
	Simulate bool
	// Loop overrides the sequence's own loop flag when set.
	Loop *bool
	// StepDelay overrides the sequence's own inter action delay when positive.
	StepDelay time.Duration
}

// Run executes a sequence by name, blocking until it reaches a terminal
// state, and returns the persisted run record. A failed execution returns
// the record and the execution error.
//
// Only one run can be in flight per service, concurrent calls fail with
// model.ErrAlreadyRunning.
func (s *Service) Run(ctx context.Context, req Request) (*model.Run, error) {
	s.logger.Debugf("running sequence: %s", req.SequenceName)

	seq, err := s.repo.GetSequence(ctx, req.SequenceName)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("sequence not found: %s: %w", req.SequenceName, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get sequence: %w", err)
	}

	exec, err := executor.New(executor.Config{
		Positions:       s.repo,
		Input:           s.input,
		Screen:          s.screen,
		Detector:        s.detector,
		Recognizer:      s.recognizer,
		Interrupt:       s.interrupt,
		Overlay:         s.overlay,
		Notifier:        s.notifier,
		Simulate:        req.Simulate,
		StepDelay:       req.StepDelay,
		Loop:            req.Loop,
		SearchInterval:  s.searchInterval,
		TextInterval:    s.textInterval,
		ControlInterval: s.controlInterval,
		Logger:          s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create executor: %w", err)
	}

	if err := s.claim(exec); err != nil {
		return nil, err
	}
	defer s.release()

	run := model.Run{
		ID:           ulid.Make().String(),
		SequenceName: seq.Name,
		Status:       model.RunStatusRunning,
		Simulated:    req.Simulate,
		StartedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("could not create run record: %w", err)
	}

	// Step and error events fire on the run goroutine, so the closure state
	// needs no lock.
	stepsDone := 0
	exec.Events().Subscribe(func(e executor.Event) {
		switch e.Type {
		case executor.EventStepCompleted:
			stepsDone++
			run.StepsDone = stepsDone
			if err := s.repo.UpdateRun(ctx, run); err != nil {
				s.logger.Warningf("Could not update run progress: %v", err)
			}
		case executor.EventSequenceCompleted:
			s.logger.Debugf("Sequence completed after %d steps", stepsDone)
		case executor.EventPaused:
			s.logger.Infof("Execution paused")
		case executor.EventResumed:
			s.logger.Infof("Execution resumed")
		case executor.EventError:
			s.logger.Errorf("Execution error at step %d: %s", e.Step, e.Err)
		}
	})

	status, runErr := exec.Run(ctx, *seq)

	now := time.Now().UTC()
	run.Status = status
	run.StepsDone = stepsDone
	run.FinishedAt = &now
	if runErr != nil {
		run.Error = runErr.Error()
	}
	// The terminal state is recorded even when the cancellation that ended
	// the run came from this same context.
	if err := s.repo.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warningf("Could not persist run result: %v", err)
	}

	if runErr != nil {
		return &run, fmt.Errorf("sequence execution failed: %w", runErr)
	}

	s.logger.Infof("Run %s finished: %s (%d steps)", run.ID, run.Status, run.StepsDone)
	return &run, nil
}

// Pause suspends the execution in progress.
func (s *Service) Pause() error {
	exec, err := s.executing()
	if err != nil {
		return err
	}
	return exec.Pause()
}

// Resume continues a paused execution.
func (s *Service) Resume() error {
	exec, err := s.executing()
	if err != nil {
		return err
	}
	return exec.Resume()
}

// Step dispatches a single action of a paused execution.
func (s *Service) Step() error {
	exec, err := s.executing()
	if err != nil {
		return err
	}
	return exec.Step()
}

// Stop aborts the execution in progress.
func (s *Service) Stop() error {
	exec, err := s.executing()
	if err != nil {
		return err
	}
	return exec.Stop()
}

// Status returns the status of the execution in progress, or idle when
// there is none.
func (s *Service) Status() model.RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return model.RunStatusIdle
	}
	return s.current.Status()
}

// claim makes exec the execution in progress. Only one can be claimed at a
// time.
func (s *Service) claim(exec *executor.Executor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return fmt.Errorf("execution in progress: %w", model.ErrAlreadyRunning)
	}
	s.current = exec
	return nil
}

func (s *Service) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

func (s *Service) executing() (*executor.Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, fmt.Errorf("no execution in progress: %w", model.ErrNotValid)
	}
	return s.current, nil
}
