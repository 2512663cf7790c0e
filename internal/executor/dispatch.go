package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/seqr/internal/input"
	"github.com/slok/seqr/internal/model"
)

// dispatch runs a single action. It returns errPausedMidAction or
// model.ErrInterrupted untouched so the run loop can tell control flow
// apart from real failures, everything else gets the step context attached.
func (e *Executor) dispatch(ctx context.Context, step int, action model.Action) error {
	var err error
	switch action.Kind {
	case model.ActionKindClick:
		err = e.doClick(ctx, action.Click.Position, input.MouseButtonLeft, 1)
	case model.ActionKindRightClick:
		err = e.doClick(ctx, action.Click.Position, input.MouseButtonRight, 1)
	case model.ActionKindDoubleClick:
		err = e.doClick(ctx, action.Click.Position, input.MouseButtonLeft, 2)
	case model.ActionKindDrag:
		err = e.doDrag(ctx, *action.Drag)
	case model.ActionKindTypeText:
		err = e.doTypeText(ctx, *action.TypeText)
	case model.ActionKindWait:
		err = e.doWait(ctx, action.Wait.Duration)
	case model.ActionKindTemplateSearch:
		err = e.doTemplateSearch(ctx, *action.TemplateSearch)
	case model.ActionKindWaitForText:
		err = e.doWaitForText(ctx, *action.WaitForText)
	default:
		err = fmt.Errorf("unknown action kind %q: %w", action.Kind, model.ErrNotValid)
	}

	if err != nil && !errors.Is(err, errPausedMidAction) && !errors.Is(err, model.ErrInterrupted) {
		return fmt.Errorf("step %d (%s): %w", step, action.Kind, err)
	}
	return err
}

// resolve maps a position name to its stored coordinates.
func (e *Executor) resolve(ctx context.Context, name string) (*model.Position, error) {
	pos, err := e.positions.GetPosition(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("position %q: %w", name, err)
	}
	return pos, nil
}

func (e *Executor) doClick(ctx context.Context, position string, button input.MouseButton, count int) error {
	pos, err := e.resolve(ctx, position)
	if err != nil {
		return err
	}

	if e.simulate {
		e.logger.Infof("[simulate] Click %s x%d on %q (%d, %d)", button, count, pos.Name, pos.X, pos.Y)
		return nil
	}

	err = e.input.Click(ctx, pos.X, pos.Y, button, count)
	if err != nil {
		return fmt.Errorf("could not click: %w", err)
	}

	return nil
}

func (e *Executor) doDrag(ctx context.Context, params model.DragParams) error {
	from, err := e.resolve(ctx, params.From)
	if err != nil {
		return err
	}
	to, err := e.resolve(ctx, params.To)
	if err != nil {
		return err
	}

	if e.simulate {
		e.logger.Infof("[simulate] Drag from %q (%d, %d) to %q (%d, %d) over %s", from.Name, from.X, from.Y, to.Name, to.X, to.Y, params.Duration)
		return nil
	}

	err = e.input.Drag(ctx, from.X, from.Y, to.X, to.Y, params.Duration)
	if err != nil {
		return fmt.Errorf("could not drag: %w", err)
	}

	return nil
}

func (e *Executor) doTypeText(ctx context.Context, params model.TypeTextParams) error {
	// Focus the target first when the action names one.
	if params.Position != "" {
		pos, err := e.resolve(ctx, params.Position)
		if err != nil {
			return err
		}

		if e.simulate {
			e.logger.Infof("[simulate] Type %q into %q (%d, %d)", params.Text, pos.Name, pos.X, pos.Y)
			return nil
		}

		err = e.input.Click(ctx, pos.X, pos.Y, input.MouseButtonLeft, 1)
		if err != nil {
			return fmt.Errorf("could not focus target: %w", err)
		}
		time.Sleep(focusSettleDelay)
	} else if e.simulate {
		e.logger.Infof("[simulate] Type %q", params.Text)
		return nil
	}

	err := e.input.TypeText(ctx, params.Text)
	if err != nil {
		return fmt.Errorf("could not type text: %w", err)
	}

	return nil
}

func (e *Executor) doWait(ctx context.Context, d time.Duration) error {
	e.logger.Debugf("Waiting %s", d)
	return e.sleep(ctx, d)
}
