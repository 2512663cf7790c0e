package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrAlreadyRunning is returned when an execution is requested while
	// another one is in progress.
	ErrAlreadyRunning = errors.New("already running")
	// ErrTimeout is returned when a wait deadline is exceeded.
	ErrTimeout = errors.New("timed out")
	// ErrNoMatch is returned when a template search set to abort finds nothing.
	ErrNoMatch = errors.New("no match")
	// ErrInterrupted is returned internally when a stop request is observed
	// mid action. It never surfaces to callers as a failure.
	ErrInterrupted = errors.New("interrupted")
)
