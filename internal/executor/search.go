package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/seqr/internal/model"
)

// doTemplateSearch polls the screen until any of the wanted templates is
// found with enough confidence. A timeout without a match is a soft result
// unless the action asks to abort.
func (e *Executor) doTemplateSearch(ctx context.Context, params model.TemplateSearchParams) error {
	if e.simulate {
		e.logger.Infof("[simulate] Template search (%d templates, all: %t, confidence %.2f, timeout %s)", len(params.Templates), params.AllTemplates, params.Confidence, params.Timeout)
		return nil
	}

	// The overlay is forced on for the whole search so matches are visible,
	// whatever state the user left the toggles in.
	restore := e.forceOverlay()
	defer restore()

	templates := params.Templates
	if params.AllTemplates {
		templates = e.detector.Templates()
	}
	if len(templates) == 0 {
		return fmt.Errorf("no templates to search: %w", model.ErrNotValid)
	}

	e.logger.Debugf("Searching %d templates (confidence %.2f, timeout %s)", len(templates), params.Confidence, params.Timeout)

	deadline := time.Now().Add(params.Timeout)
	notified := false
	for {
		if err := e.checkpoint(ctx); err != nil {
			return err
		}

		frame, err := e.screen.Capture(ctx)
		if err != nil {
			return fmt.Errorf("could not capture frame: %w", err)
		}
		if frame != nil {
			matches, err := e.detector.Match(ctx, frame, templates, params.Confidence)
			if err != nil {
				return fmt.Errorf("could not match templates: %w", err)
			}
			e.overlay.PublishMatches(matches)
			if len(matches) > 0 {
				if params.NotifyOnMatch && !notified {
					notified = true
					err := e.notifier.Notify(ctx, fmt.Sprintf("Template %q matched", matches[0].Template))
					if err != nil {
						e.logger.Warningf("Could not notify match: %v", err)
					}
				}
				e.logger.Debugf("Found %d matches, best %q at (%d, %d) with confidence %.2f", len(matches), matches[0].Template, matches[0].X, matches[0].Y, matches[0].Confidence)
				return nil
			}
		}

		if time.Now().After(deadline) {
			if params.AbortOnNoMatch {
				return fmt.Errorf("no template matched within %s: %w", params.Timeout, model.ErrNoMatch)
			}
			e.logger.Warningf("No template matched within %s, continuing", params.Timeout)
			return nil
		}

		time.Sleep(e.searchInterval)
	}
}

// forceOverlay switches both overlay toggles on and returns the function
// restoring the previous state.
func (e *Executor) forceOverlay() func() {
	draw := e.overlay.DrawActive()
	matching := e.overlay.MatchingActive()
	e.overlay.SetDrawActive(true)
	e.overlay.SetMatchingActive(true)
	return func() {
		e.overlay.SetDrawActive(draw)
		e.overlay.SetMatchingActive(matching)
	}
}
