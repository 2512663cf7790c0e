package model

import (
	"time"
)

// RunStatus represents the status of a sequence execution.
type RunStatus string

const (
	// RunStatusIdle indicates no execution is in progress.
	RunStatusIdle RunStatus = "idle"
	// RunStatusRunning indicates actions are being dispatched.
	RunStatusRunning RunStatus = "running"
	// RunStatusPaused indicates execution is suspended and can be resumed or stepped.
	RunStatusPaused RunStatus = "paused"
	// RunStatusStopped indicates execution was stopped by the user or the stop key.
	RunStatusStopped RunStatus = "stopped"
	// RunStatusCompleted indicates the final action finished successfully.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates an action failed and execution aborted.
	RunStatusFailed RunStatus = "failed"
)

// Run is the record of a single sequence execution.
type Run struct {
	ID           string
	SequenceName string
	Status       RunStatus
	Simulated    bool
	// StepsDone counts successfully dispatched actions, including repeats
	// when the sequence loops.
	StepsDone  int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}
