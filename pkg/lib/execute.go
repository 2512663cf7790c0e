package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/seqr/internal/app/list"
	"github.com/slok/seqr/internal/app/run"
)

// ExecuteOpts are the optional execution parameters.
type ExecuteOpts struct {
	// Simulate logs every action instead of dispatching input.
	Simulate bool
	// Loop overrides the sequence's own loop flag when set.
	Loop *bool
	// StepDelay overrides the sequence's own inter action delay when
	// positive.
	StepDelay time.Duration
}

// Execute runs a stored sequence by name, blocking until it reaches a
// terminal state, and returns the persisted run record. Pass nil opts for
// defaults.
//
// A failed execution returns the record together with the execution error.
// While an execution is in progress further Execute calls fail with
// [ErrAlreadyRunning]; run Execute on its own goroutine to drive it with
// [Client.Pause], [Client.Resume], [Client.Step] and [Client.Stop].
func (c *Client) Execute(ctx context.Context, sequenceName string, opts *ExecuteOpts) (*Run, error) {
	req := run.Request{SequenceName: sequenceName}
	if opts != nil {
		req.Simulate = opts.Simulate
		req.Loop = opts.Loop
		req.StepDelay = opts.StepDelay
	}

	return c.runner.Run(ctx, req)
}

// Pause suspends the execution in progress before its next action.
func (c *Client) Pause() error {
	return c.runner.Pause()
}

// Resume continues a paused execution.
func (c *Client) Resume() error {
	return c.runner.Resume()
}

// Step dispatches exactly one action of a paused execution and pauses again.
func (c *Client) Step() error {
	return c.runner.Step()
}

// Stop aborts the execution in progress. The run record finishes as stopped,
// not failed.
func (c *Client) Stop() error {
	return c.runner.Stop()
}

// Status returns the state of the current execution, or [RunStatusIdle] when
// none is in progress.
func (c *Client) Status() RunStatus {
	return c.runner.Status()
}

// History returns past runs newest first, filtered by sequence name when not
// empty, capped at limit when positive.
func (c *Client) History(ctx context.Context, sequenceName string, limit int) ([]Run, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create list service: %w", err)
	}

	return svc.Runs(ctx, list.RunsRequest{SequenceName: sequenceName, Limit: limit})
}
