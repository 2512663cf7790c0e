package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/seqr/internal/model"
)

// JSONPrinter prints sequence information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// sequenceListItem represents a sequence in the list output (subset of fields).
type sequenceListItem struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Actions     int       `json:"actions"`
	Loop        bool      `json:"loop"`
	StepDelayMS int64     `json:"step_delay_ms"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// sequenceOutput represents the full sequence output, actions included.
type sequenceOutput struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Loop        bool           `json:"loop"`
	StepDelayMS int64          `json:"step_delay_ms"`
	Actions     []actionOutput `json:"actions"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// actionOutput represents a single action of a sequence.
type actionOutput struct {
	Step   int    `json:"step"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// positionListItem represents a position in the list output.
type positionListItem struct {
	Name      string    `json:"name"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	UpdatedAt time.Time `json:"updated_at"`
}

// runListItem represents a run in the history output.
type runListItem struct {
	ID         string     `json:"id"`
	Sequence   string     `json:"sequence"`
	Status     string     `json:"status"`
	Simulated  bool       `json:"simulated"`
	StepsDone  int        `json:"steps_done"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// checkResultItem represents a single check result.
type checkResultItem struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintSequenceList prints sequences in JSON format with a subset of fields.
func (j *JSONPrinter) PrintSequenceList(sequences []model.Sequence) error {
	items := make([]sequenceListItem, len(sequences))
	for i, s := range sequences {
		items[i] = sequenceListItem{
			Name:        s.Name,
			Description: s.Description,
			Actions:     len(s.Actions),
			Loop:        s.Loop,
			StepDelayMS: s.StepDelay.Milliseconds(),
			CreatedAt:   s.CreatedAt.UTC(),
			UpdatedAt:   s.UpdatedAt.UTC(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintSequence prints a single sequence with its actions in JSON format.
func (j *JSONPrinter) PrintSequence(sequence model.Sequence) error {
	actions := make([]actionOutput, len(sequence.Actions))
	for i, a := range sequence.Actions {
		actions[i] = actionOutput{
			Step:   i,
			Kind:   string(a.Kind),
			Detail: actionDetail(a),
		}
	}

	output := sequenceOutput{
		Name:        sequence.Name,
		Description: sequence.Description,
		Loop:        sequence.Loop,
		StepDelayMS: sequence.StepDelay.Milliseconds(),
		Actions:     actions,
		CreatedAt:   sequence.CreatedAt.UTC(),
		UpdatedAt:   sequence.UpdatedAt.UTC(),
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintPositionList prints positions in JSON format.
func (j *JSONPrinter) PrintPositionList(positions []model.Position) error {
	items := make([]positionListItem, len(positions))
	for i, p := range positions {
		items[i] = positionListItem{
			Name:      p.Name,
			X:         p.X,
			Y:         p.Y,
			UpdatedAt: p.UpdatedAt.UTC(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRunList prints execution history in JSON format.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	items := make([]runListItem, len(runs))
	for i, r := range runs {
		items[i] = runListItem{
			ID:         r.ID,
			Sequence:   r.SequenceName,
			Status:     string(r.Status),
			Simulated:  r.Simulated,
			StepsDone:  r.StepsDone,
			Error:      r.Error,
			StartedAt:  r.StartedAt.UTC(),
			FinishedAt: nil,
		}
		if r.FinishedAt != nil {
			utcTime := r.FinishedAt.UTC()
			items[i].FinishedAt = &utcTime
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintCheckResults prints check results in JSON format.
func (j *JSONPrinter) PrintCheckResults(results []model.CheckResult) error {
	items := make([]checkResultItem, len(results))
	for i, r := range results {
		items[i] = checkResultItem{
			ID:      r.ID,
			Status:  string(r.Status),
			Message: r.Message,
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
