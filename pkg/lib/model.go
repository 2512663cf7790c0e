package lib

import (
	"github.com/slok/seqr/internal/detect"
	"github.com/slok/seqr/internal/input"
	"github.com/slok/seqr/internal/interrupt"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/notify"
	"github.com/slok/seqr/internal/overlay"
	"github.com/slok/seqr/internal/recognize"
	"github.com/slok/seqr/internal/screen"
)

// The SDK works on the same types the engine uses internally, re-exported
// here as aliases so they can be named from outside the module. A value built
// with these types can be passed to any SDK method without conversion.

// Sequence is a named, ordered list of actions.
type Sequence = model.Sequence

// Action is a single step of a sequence. Exactly one parameter record must
// be set and it must agree with Kind.
type Action = model.Action

// ActionKind identifies the type of an action.
type ActionKind = model.ActionKind

// Action kinds.
const (
	ActionKindClick          = model.ActionKindClick
	ActionKindRightClick     = model.ActionKindRightClick
	ActionKindDoubleClick    = model.ActionKindDoubleClick
	ActionKindDrag           = model.ActionKindDrag
	ActionKindTypeText       = model.ActionKindTypeText
	ActionKindWait           = model.ActionKindWait
	ActionKindTemplateSearch = model.ActionKindTemplateSearch
	ActionKindWaitForText    = model.ActionKindWaitForText
)

// ClickParams are the parameters of click, right click and double click
// actions.
type ClickParams = model.ClickParams

// DragParams are the parameters of drag actions.
type DragParams = model.DragParams

// TypeTextParams are the parameters of type text actions.
type TypeTextParams = model.TypeTextParams

// WaitParams are the parameters of wait actions.
type WaitParams = model.WaitParams

// TemplateSearchParams are the parameters of template search actions.
type TemplateSearchParams = model.TemplateSearchParams

// WaitForTextParams are the parameters of text wait actions.
type WaitForTextParams = model.WaitForTextParams

// Position is a named screen coordinate.
type Position = model.Position

// Region is a rectangular screen area.
type Region = model.Region

// Match is a template match found on a captured frame.
type Match = model.Match

// Library is a set of positions and sequences loaded from a file.
type Library = model.Library

// Run is the record of a single sequence execution.
type Run = model.Run

// RunStatus represents the state of an execution.
type RunStatus = model.RunStatus

// Run statuses.
const (
	RunStatusIdle      = model.RunStatusIdle
	RunStatusRunning   = model.RunStatusRunning
	RunStatusPaused    = model.RunStatusPaused
	RunStatusStopped   = model.RunStatusStopped
	RunStatusCompleted = model.RunStatusCompleted
	RunStatusFailed    = model.RunStatusFailed
)

// CheckResult represents the result of a single validation or preflight
// check.
type CheckResult = model.CheckResult

// CheckStatus represents the status of a check.
type CheckStatus = model.CheckStatus

// Check statuses.
const (
	CheckStatusOK      = model.CheckStatusOK
	CheckStatusWarning = model.CheckStatusWarning
	CheckStatusError   = model.CheckStatusError
)

// HasErrors reports whether any of the results has error status.
func HasErrors(results []CheckResult) bool {
	return model.HasErrors(results)
}

// CountByStatus returns how many results are ok, warnings and errors.
func CountByStatus(results []CheckResult) (ok, warnings, errors int) {
	return model.CountByStatus(results)
}

// Capturer captures frames of the live view. Capture may return a nil frame
// with a nil error when no frame is available this tick.
type Capturer = screen.Capturer

// Controller dispatches mouse and keyboard actions.
type Controller = input.Controller

// MouseButton identifies a mouse button.
type MouseButton = input.MouseButton

// Mouse buttons.
const (
	MouseButtonLeft  = input.MouseButtonLeft
	MouseButtonRight = input.MouseButtonRight
)

// Detector matches image templates against captured frames.
type Detector = detect.Detector

// Recognizer extracts text from captured frames.
type Recognizer = recognize.Recognizer

// InterruptSource reports whether the emergency stop was requested.
type InterruptSource = interrupt.Source

// Overlay observes match activity during template searches.
type Overlay = overlay.Overlay

// Notifier is invoked when a template search finds its target.
type Notifier = notify.Notifier

// Errors returned by the SDK. Use errors.Is to check for them.
var (
	// ErrNotFound is returned when a sequence, position or run does not exist.
	ErrNotFound = model.ErrNotFound
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = model.ErrAlreadyExists
	// ErrNotValid is returned when a resource or request is not valid.
	ErrNotValid = model.ErrNotValid
	// ErrAlreadyRunning is returned by Execute while another execution is in
	// progress.
	ErrAlreadyRunning = model.ErrAlreadyRunning
	// ErrTimeout is returned when a wait deadline is exceeded.
	ErrTimeout = model.ErrTimeout
	// ErrNoMatch is returned when a template search set to abort finds
	// nothing.
	ErrNoMatch = model.ErrNoMatch
)
