package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/seqr/internal/model"
)

// TablePrinter prints sequence information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintSequenceList prints sequences in a table format.
func (t *TablePrinter) PrintSequenceList(sequences []model.Sequence) error {
	if len(sequences) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "NAME\tACTIONS\tLOOP\tSTEP DELAY\tUPDATED")

	// Print rows
	for _, s := range sequences {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			s.Name,
			len(s.Actions),
			yesNo(s.Loop),
			stepDelay(s.StepDelay),
			TimeAgo(s.UpdatedAt),
		)
	}

	return nil
}

// PrintSequence prints a single sequence in detail, including its actions.
func (t *TablePrinter) PrintSequence(sequence model.Sequence) error {
	fmt.Fprintf(t.writer, "Name:        %s\n", sequence.Name)
	if sequence.Description != "" {
		fmt.Fprintf(t.writer, "Description: %s\n", sequence.Description)
	}
	fmt.Fprintf(t.writer, "Loop:        %s\n", yesNo(sequence.Loop))
	fmt.Fprintf(t.writer, "Step delay:  %s\n", stepDelay(sequence.StepDelay))
	fmt.Fprintf(t.writer, "Created:     %s\n", FormatTimestamp(sequence.CreatedAt))
	fmt.Fprintf(t.writer, "Updated:     %s\n", FormatTimestamp(sequence.UpdatedAt))
	fmt.Fprintf(t.writer, "\n")

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Step numbers match the ones used in execution logs and errors.
	fmt.Fprintln(tw, "STEP\tACTION\tDETAIL")
	for i, a := range sequence.Actions {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, a.Kind, actionDetail(a))
	}

	return nil
}

// PrintPositionList prints positions in a table format.
func (t *TablePrinter) PrintPositionList(positions []model.Position) error {
	if len(positions) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "NAME\tX\tY\tUPDATED")

	// Print rows.
	for _, p := range positions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", p.Name, p.X, p.Y, TimeAgo(p.UpdatedAt))
	}

	return nil
}

// PrintRunList prints execution history in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "RUN\tSEQUENCE\tSTATUS\tSTEPS\tMODE\tSTARTED\tDURATION")

	// Print rows.
	for _, r := range runs {
		mode := "live"
		if r.Simulated {
			mode = "simulated"
		}
		duration := "-"
		if r.FinishedAt != nil {
			duration = FormatDuration(r.FinishedAt.Sub(r.StartedAt))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID,
			r.SequenceName,
			r.Status,
			r.StepsDone,
			mode,
			TimeAgo(r.StartedAt),
			duration,
		)
	}

	return nil
}

// PrintCheckResults prints check results in a table format with a summary line.
func (t *TablePrinter) PrintCheckResults(results []model.CheckResult) error {
	if len(results) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	// Print header.
	fmt.Fprintln(tw, "STATUS\tCHECK\tMESSAGE")

	// Print rows.
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.ToUpper(string(r.Status)), r.ID, r.Message)
	}

	// Flush before the summary so the table lands above it.
	if err := tw.Flush(); err != nil {
		return err
	}

	ok, warnings, errors := model.CountByStatus(results)
	fmt.Fprintf(t.writer, "\nok: %d, warnings: %d, errors: %d\n", ok, warnings, errors)

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func stepDelay(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return FormatDuration(d)
}

// actionDetail returns a one-line description of the action parameters.
func actionDetail(a model.Action) string {
	switch a.Kind {
	case model.ActionKindClick, model.ActionKindRightClick, model.ActionKindDoubleClick:
		if a.Click == nil {
			return ""
		}
		return fmt.Sprintf("position %q", a.Click.Position)

	case model.ActionKindDrag:
		if a.Drag == nil {
			return ""
		}
		return fmt.Sprintf("from %q to %q over %s", a.Drag.From, a.Drag.To, FormatDuration(a.Drag.Duration))

	case model.ActionKindTypeText:
		if a.TypeText == nil {
			return ""
		}
		if a.TypeText.Position != "" {
			return fmt.Sprintf("%q at %q", a.TypeText.Text, a.TypeText.Position)
		}
		return fmt.Sprintf("%q", a.TypeText.Text)

	case model.ActionKindWait:
		if a.Wait == nil {
			return ""
		}
		return FormatDuration(a.Wait.Duration)

	case model.ActionKindTemplateSearch:
		if a.TemplateSearch == nil {
			return ""
		}
		target := strings.Join(a.TemplateSearch.Templates, ", ")
		if a.TemplateSearch.AllTemplates {
			target = "all templates"
		}
		detail := fmt.Sprintf("%s (confidence %.2f, timeout %s)",
			target, a.TemplateSearch.Confidence, FormatDuration(a.TemplateSearch.Timeout))
		if a.TemplateSearch.AbortOnNoMatch {
			detail += ", abort on no match"
		}
		return detail

	case model.ActionKindWaitForText:
		if a.WaitForText == nil {
			return ""
		}
		match := "exact"
		if a.WaitForText.Partial {
			match = "partial"
		}
		detail := fmt.Sprintf("%q (%s, timeout %s)",
			a.WaitForText.Text, match, FormatDuration(a.WaitForText.Timeout))
		if a.WaitForText.Region != nil {
			detail += ", in region"
		}
		return detail
	}

	return ""
}
