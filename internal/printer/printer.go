package printer

import "github.com/slok/seqr/internal/model"

// Printer knows how to print sequence information in different formats.
type Printer interface {
	PrintSequenceList(sequences []model.Sequence) error
	PrintSequence(sequence model.Sequence) error
	PrintPositionList(positions []model.Position) error
	PrintRunList(runs []model.Run) error
	PrintCheckResults(results []model.CheckResult) error
	PrintMessage(msg string) error
}
