package io

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/seqr/internal/model"
)

// Action represents the YAML structure for a single sequence action. Exactly
// one of the sections must be set, durations are milliseconds.
type Action struct {
	Click          *ClickAction          `yaml:"click,omitempty"`
	RightClick     *ClickAction          `yaml:"right_click,omitempty"`
	DoubleClick    *ClickAction          `yaml:"double_click,omitempty"`
	Drag           *DragAction           `yaml:"drag,omitempty"`
	TypeText       *TypeTextAction       `yaml:"type_text,omitempty"`
	Wait           *WaitAction           `yaml:"wait,omitempty"`
	TemplateSearch *TemplateSearchAction `yaml:"template_search,omitempty"`
	WaitForText    *WaitForTextAction    `yaml:"wait_for_text,omitempty"`
}

// ClickAction represents the YAML structure for the click action family.
type ClickAction struct {
	Position string `yaml:"position"`
}

// DragAction represents the YAML structure for a drag action.
type DragAction struct {
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	DurationMS int    `yaml:"duration_ms,omitempty"`
}

// TypeTextAction represents the YAML structure for a type text action.
type TypeTextAction struct {
	Text     string `yaml:"text"`
	Position string `yaml:"position,omitempty"`
}

// WaitAction represents the YAML structure for a wait action.
type WaitAction struct {
	DurationMS int `yaml:"duration_ms"`
}

// TemplateSearchAction represents the YAML structure for a template search
// action.
type TemplateSearchAction struct {
	Templates      []string `yaml:"templates,omitempty"`
	AllTemplates   bool     `yaml:"all_templates,omitempty"`
	Confidence     float64  `yaml:"confidence"`
	TimeoutMS      int      `yaml:"timeout_ms"`
	Notify         bool     `yaml:"notify,omitempty"`
	AbortOnNoMatch bool     `yaml:"abort_on_no_match,omitempty"`
}

// WaitForTextAction represents the YAML structure for a wait for text action.
type WaitForTextAction struct {
	Text      string  `yaml:"text"`
	Partial   bool    `yaml:"partial,omitempty"`
	TimeoutMS int     `yaml:"timeout_ms"`
	Region    *Region `yaml:"region,omitempty"`
}

// Region represents the YAML structure for a screen region.
type Region struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (a Action) validate() error {
	set := 0
	for _, p := range []bool{
		a.Click != nil,
		a.RightClick != nil,
		a.DoubleClick != nil,
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
	if set == 0 {
		return fmt.Errorf("exactly one action type must be specified")
	}
	if set > 1 {
		return fmt.Errorf("only one action type can be specified at a time")
	}
	return nil
}

func (a Action) toModel() model.Action {
	switch {
	case a.Click != nil:
		return model.Action{Kind: model.ActionKindClick, Click: &model.ClickParams{Position: a.Click.Position}}
	case a.RightClick != nil:
		return model.Action{Kind: model.ActionKindRightClick, Click: &model.ClickParams{Position: a.RightClick.Position}}
	case a.DoubleClick != nil:
		return model.Action{Kind: model.ActionKindDoubleClick, Click: &model.ClickParams{Position: a.DoubleClick.Position}}
	case a.Drag != nil:
		return model.Action{Kind: model.ActionKindDrag, Drag: &model.DragParams{
			From:     a.Drag.From,
			To:       a.Drag.To,
			Duration: msToDuration(a.Drag.DurationMS),
		}}
	case a.TypeText != nil:
		return model.Action{Kind: model.ActionKindTypeText, TypeText: &model.TypeTextParams{
			Text:     a.TypeText.Text,
			Position: a.TypeText.Position,
		}}
	case a.Wait != nil:
		return model.Action{Kind: model.ActionKindWait, Wait: &model.WaitParams{Duration: msToDuration(a.Wait.DurationMS)}}
	case a.TemplateSearch != nil:
		return model.Action{Kind: model.ActionKindTemplateSearch, TemplateSearch: &model.TemplateSearchParams{
			Templates:      a.TemplateSearch.Templates,
			AllTemplates:   a.TemplateSearch.AllTemplates,
			Confidence:     a.TemplateSearch.Confidence,
			Timeout:        msToDuration(a.TemplateSearch.TimeoutMS),
			NotifyOnMatch:  a.TemplateSearch.Notify,
			AbortOnNoMatch: a.TemplateSearch.AbortOnNoMatch,
		}}
	case a.WaitForText != nil:
		action := model.Action{Kind: model.ActionKindWaitForText, WaitForText: &model.WaitForTextParams{
			Text:    a.WaitForText.Text,
			Partial: a.WaitForText.Partial,
			Timeout: msToDuration(a.WaitForText.TimeoutMS),
		}}
		if a.WaitForText.Region != nil {
			action.WaitForText.Region = &model.Region{
				X:      a.WaitForText.Region.X,
				Y:      a.WaitForText.Region.Y,
				Width:  a.WaitForText.Region.Width,
				Height: a.WaitForText.Region.Height,
			}
		}
		return action
	}

	return model.Action{}
}

func actionFromModel(a model.Action) (Action, error) {
	switch a.Kind {
	case model.ActionKindClick:
		return Action{Click: &ClickAction{Position: a.Click.Position}}, nil
	case model.ActionKindRightClick:
		return Action{RightClick: &ClickAction{Position: a.Click.Position}}, nil
	case model.ActionKindDoubleClick:
		return Action{DoubleClick: &ClickAction{Position: a.Click.Position}}, nil
	case model.ActionKindDrag:
		return Action{Drag: &DragAction{
			From:       a.Drag.From,
			To:         a.Drag.To,
			DurationMS: durationToMS(a.Drag.Duration),
		}}, nil
	case model.ActionKindTypeText:
		return Action{TypeText: &TypeTextAction{Text: a.TypeText.Text, Position: a.TypeText.Position}}, nil
	case model.ActionKindWait:
		return Action{Wait: &WaitAction{DurationMS: durationToMS(a.Wait.Duration)}}, nil
	case model.ActionKindTemplateSearch:
		return Action{TemplateSearch: &TemplateSearchAction{
			Templates:      a.TemplateSearch.Templates,
			AllTemplates:   a.TemplateSearch.AllTemplates,
			Confidence:     a.TemplateSearch.Confidence,
			TimeoutMS:      durationToMS(a.TemplateSearch.Timeout),
			Notify:         a.TemplateSearch.NotifyOnMatch,
			AbortOnNoMatch: a.TemplateSearch.AbortOnNoMatch,
		}}, nil
	case model.ActionKindWaitForText:
		action := Action{WaitForText: &WaitForTextAction{
			Text:      a.WaitForText.Text,
			Partial:   a.WaitForText.Partial,
			TimeoutMS: durationToMS(a.WaitForText.Timeout),
		}}
		if a.WaitForText.Region != nil {
			action.WaitForText.Region = &Region{
				X:      a.WaitForText.Region.X,
				Y:      a.WaitForText.Region.Y,
				Width:  a.WaitForText.Region.Width,
				Height: a.WaitForText.Region.Height,
			}
		}
		return action, nil
	}

	return Action{}, fmt.Errorf("unknown action kind %q", a.Kind)
}

// EncodeActions serializes actions into the YAML form library files use.
// SQLite stores sequence actions in the same form so the two agree.
func EncodeActions(actions []model.Action) ([]byte, error) {
	encoded := make([]Action, 0, len(actions))
	for i, a := range actions {
		ya, err := actionFromModel(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		encoded = append(encoded, ya)
	}

	data, err := yaml.Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("marshaling actions: %w", err)
	}

	return data, nil
}

// DecodeActions parses actions from their YAML form.
func DecodeActions(data []byte) ([]model.Action, error) {
	var encoded []Action
	if err := yaml.Unmarshal(data, &encoded); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	actions := make([]model.Action, 0, len(encoded))
	for i, ya := range encoded {
		if err := ya.validate(); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, ya.toModel())
	}

	return actions, nil
}

func msToDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

func durationToMS(d time.Duration) int { return int(d / time.Millisecond) }
