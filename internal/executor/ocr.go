package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slok/seqr/internal/model"
)

// doWaitForText polls the screen until OCR yields the wanted text. Unlike a
// template search, running out of time is always a failure.
func (e *Executor) doWaitForText(ctx context.Context, params model.WaitForTextParams) error {
	if e.simulate {
		e.logger.Infof("[simulate] Wait for text %q (partial: %t, timeout %s)", params.Text, params.Partial, params.Timeout)
		return nil
	}

	e.logger.Debugf("Waiting for text %q (partial: %t, timeout %s)", params.Text, params.Partial, params.Timeout)

	want := strings.ToLower(strings.TrimSpace(params.Text))
	deadline := time.Now().Add(params.Timeout)
	for {
		if err := e.checkpoint(ctx); err != nil {
			return err
		}

		frame, err := e.screen.Capture(ctx)
		if err != nil {
			return fmt.Errorf("could not capture frame: %w", err)
		}
		if frame != nil {
			text, err := e.recognizer.ExtractText(ctx, frame, params.Region)
			if err != nil {
				return fmt.Errorf("could not extract text: %w", err)
			}
			got := strings.ToLower(strings.TrimSpace(text))
			found := got == want
			if params.Partial {
				found = strings.Contains(got, want)
			}
			if found {
				e.logger.Debugf("Found text %q", params.Text)
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("text %q not found within %s: %w", params.Text, params.Timeout, model.ErrTimeout)
		}

		time.Sleep(e.textInterval)
	}
}
