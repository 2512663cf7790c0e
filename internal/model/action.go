package model

import (
	"fmt"
	"time"
)

// ActionKind discriminates the action parameter union.
type ActionKind string

const (
	// ActionKindClick clicks the left mouse button on a named position.
	ActionKindClick ActionKind = "click"
	// ActionKindRightClick clicks the right mouse button on a named position.
	ActionKindRightClick ActionKind = "right_click"
	// ActionKindDoubleClick double clicks the left mouse button on a named position.
	ActionKindDoubleClick ActionKind = "double_click"
	// ActionKindDrag presses at one named position and releases at another.
	ActionKindDrag ActionKind = "drag"
	// ActionKindTypeText types a text string, optionally focusing a position first.
	ActionKindTypeText ActionKind = "type_text"
	// ActionKindWait sleeps for a fixed duration.
	ActionKindWait ActionKind = "wait"
	// ActionKindTemplateSearch polls the screen for image template matches.
	ActionKindTemplateSearch ActionKind = "template_search"
	// ActionKindWaitForText polls the screen until OCR finds a text.
	ActionKindWaitForText ActionKind = "wait_for_text"
)

// Action is a single step of a sequence. Exactly one parameter record must be
// set and it must agree with Kind.
type Action struct {
	Kind           ActionKind
	Click          *ClickParams
	Drag           *DragParams
	TypeText       *TypeTextParams
	Wait           *WaitParams
	TemplateSearch *TemplateSearchParams
	WaitForText    *WaitForTextParams
}

// ClickParams configures the click family of actions.
type ClickParams struct {
	Position string
}

// DragParams configures a drag action.
type DragParams struct {
	From     string
	To       string
	Duration time.Duration
}

// TypeTextParams configures a type text action. Position is optional: when
// set, it is clicked first to focus the target before typing.
type TypeTextParams struct {
	Text     string
	Position string
}

// WaitParams configures a wait action.
type WaitParams struct {
	Duration time.Duration
}

// TemplateSearchParams configures a template search action.
//
// Templates lists the template names to look for; AllTemplates searches every
// loaded template instead. A search that times out without a match succeeds
// unless AbortOnNoMatch is set.
type TemplateSearchParams struct {
	Templates      []string
	AllTemplates   bool
	Confidence     float64
	Timeout        time.Duration
	NotifyOnMatch  bool
	AbortOnNoMatch bool
}

// WaitForTextParams configures a wait for text action. Region limits where
// text is extracted from; nil means the full frame. Matching is case
// insensitive, by substring when Partial is set and full equality otherwise.
type WaitForTextParams struct {
	Text    string
	Partial bool
	Timeout time.Duration
	Region  *Region
}

// Validate validates the action.
func (a *Action) Validate() error {
	set := 0
	for _, p := range []bool{
		a.Click != nil,
		a.Drag != nil,
		a.TypeText != nil,
		a.Wait != nil,
		a.TemplateSearch != nil,
		a.WaitForText != nil,
	} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one parameter record must be set, got %d: %w", set, ErrNotValid)
	}

	switch a.Kind {
	case ActionKindClick, ActionKindRightClick, ActionKindDoubleClick:
		if a.Click == nil {
			return fmt.Errorf("%s action requires click parameters: %w", a.Kind, ErrNotValid)
		}
		if a.Click.Position == "" {
			return fmt.Errorf("%s action position is required: %w", a.Kind, ErrNotValid)
		}

	case ActionKindDrag:
		if a.Drag == nil {
			return fmt.Errorf("drag action requires drag parameters: %w", ErrNotValid)
		}
		if a.Drag.From == "" || a.Drag.To == "" {
			return fmt.Errorf("drag action from and to positions are required: %w", ErrNotValid)
		}
		if a.Drag.Duration < 0 {
			return fmt.Errorf("drag duration must be non-negative: %w", ErrNotValid)
		}

	case ActionKindTypeText:
		if a.TypeText == nil {
			return fmt.Errorf("type_text action requires text parameters: %w", ErrNotValid)
		}
		if a.TypeText.Text == "" {
			return fmt.Errorf("type_text action text is required: %w", ErrNotValid)
		}

	case ActionKindWait:
		if a.Wait == nil {
			return fmt.Errorf("wait action requires wait parameters: %w", ErrNotValid)
		}
		if a.Wait.Duration <= 0 {
			return fmt.Errorf("wait duration must be positive: %w", ErrNotValid)
		}

	case ActionKindTemplateSearch:
		if a.TemplateSearch == nil {
			return fmt.Errorf("template_search action requires search parameters: %w", ErrNotValid)
		}
		p := a.TemplateSearch
		if len(p.Templates) == 0 && !p.AllTemplates {
			return fmt.Errorf("template_search action requires templates or all_templates: %w", ErrNotValid)
		}
		if p.Confidence <= 0 || p.Confidence > 1 {
			return fmt.Errorf("template_search confidence must be in (0, 1]: %w", ErrNotValid)
		}
		if p.Timeout <= 0 {
			return fmt.Errorf("template_search timeout must be positive: %w", ErrNotValid)
		}

	case ActionKindWaitForText:
		if a.WaitForText == nil {
			return fmt.Errorf("wait_for_text action requires text parameters: %w", ErrNotValid)
		}
		p := a.WaitForText
		if p.Text == "" {
			return fmt.Errorf("wait_for_text text is required: %w", ErrNotValid)
		}
		if p.Timeout <= 0 {
			return fmt.Errorf("wait_for_text timeout must be positive: %w", ErrNotValid)
		}
		if p.Region != nil {
			if err := p.Region.Validate(); err != nil {
				return fmt.Errorf("wait_for_text region: %w", err)
			}
		}

	default:
		return fmt.Errorf("unknown action kind %q: %w", a.Kind, ErrNotValid)
	}

	return nil
}
