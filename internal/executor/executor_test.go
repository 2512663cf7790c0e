package executor_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	detectfake "github.com/slok/seqr/internal/detect/fake"
	"github.com/slok/seqr/internal/executor"
	"github.com/slok/seqr/internal/input"
	inputfake "github.com/slok/seqr/internal/input/fake"
	"github.com/slok/seqr/internal/interrupt"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/notify"
	"github.com/slok/seqr/internal/overlay"
	recognizefake "github.com/slok/seqr/internal/recognize/fake"
	screenfake "github.com/slok/seqr/internal/screen/fake"
)

// testResolver resolves positions from a fixed map.
type testResolver map[string]model.Position

func (r testResolver) GetPosition(ctx context.Context, name string) (*model.Position, error) {
	pos, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("position %q not found: %w", name, model.ErrNotFound)
	}
	return &pos, nil
}

// eventRecorder collects published events for later assertions.
type eventRecorder struct {
	events []executor.Event
	mu     sync.Mutex
}

func (r *eventRecorder) record(e executor.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) all() []executor.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]executor.Event, len(r.events))
	copy(events, r.events)
	return events
}

func (r *eventRecorder) ofType(tp executor.EventType) []executor.Event {
	events := []executor.Event{}
	for _, e := range r.all() {
		if e.Type == tp {
			events = append(events, e)
		}
	}
	return events
}

func (r *eventRecorder) count(tp executor.EventType) int {
	return len(r.ofType(tp))
}

// steps returns the indices of the completed steps, in order.
func (r *eventRecorder) steps() []int {
	steps := []int{}
	for _, e := range r.ofType(executor.EventStepCompleted) {
		steps = append(steps, e.Step)
	}
	return steps
}

type fixtureConfig struct {
	frames        []image.Image
	templateNames []string
	matches       [][]model.Match
	texts         []string
	simulate      bool
	stepDelay     time.Duration
	loop          *bool
}

// fixture bundles an executor with its fake collaborators, all polling
// intervals shrunk to a millisecond.
type fixture struct {
	positions  testResolver
	input      *inputfake.Controller
	screen     *screenfake.Capturer
	detector   *detectfake.Detector
	recognizer *recognizefake.Recognizer
	overlay    *overlay.Memory
	notifier   *notify.Counter
	stop       *interrupt.Manual
	events     *eventRecorder
	exec       *executor.Executor
}

func newFixture(t *testing.T, cfg fixtureConfig) *fixture {
	require := require.New(t)

	in, err := inputfake.NewController(inputfake.ControllerConfig{})
	require.NoError(err)
	scr, err := screenfake.NewCapturer(screenfake.CapturerConfig{Frames: cfg.frames})
	require.NoError(err)
	det, err := detectfake.NewDetector(detectfake.DetectorConfig{TemplateNames: cfg.templateNames, Matches: cfg.matches})
	require.NoError(err)
	rec, err := recognizefake.NewRecognizer(recognizefake.RecognizerConfig{Texts: cfg.texts})
	require.NoError(err)

	f := &fixture{
		positions: testResolver{
			"button": {Name: "button", X: 100, Y: 200},
			"origin": {Name: "origin", X: 10, Y: 20},
			"target": {Name: "target", X: 300, Y: 400},
			"field":  {Name: "field", X: 50, Y: 60},
		},
		input:      in,
		screen:     scr,
		detector:   det,
		recognizer: rec,
		overlay:    overlay.NewMemory(),
		notifier:   notify.NewCounter(),
		stop:       interrupt.NewManual(),
		events:     &eventRecorder{},
	}

	exec, err := executor.New(executor.Config{
		Positions:       f.positions,
		Input:           f.input,
		Screen:          f.screen,
		Detector:        f.detector,
		Recognizer:      f.recognizer,
		Interrupt:       f.stop,
		Overlay:         f.overlay,
		Notifier:        f.notifier,
		Simulate:        cfg.simulate,
		StepDelay:       cfg.stepDelay,
		Loop:            cfg.loop,
		SearchInterval:  time.Millisecond,
		TextInterval:    time.Millisecond,
		ControlInterval: time.Millisecond,
	})
	require.NoError(err)
	f.exec = exec
	f.exec.Events().Subscribe(f.events.record)

	return f
}

type runResult struct {
	status model.RunStatus
	err    error
}

// start runs the sequence on its own goroutine and returns the channel the
// result will arrive on.
func (f *fixture) start(ctx context.Context, seq model.Sequence) <-chan runResult {
	ch := make(chan runResult, 1)
	go func() {
		status, err := f.exec.Run(ctx, seq)
		ch <- runResult{status: status, err: err}
	}()
	return ch
}

func (f *fixture) waitRunning(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return f.exec.Status() == model.RunStatusRunning }, 2*time.Second, time.Millisecond)
}

// pauseWhenRunning retries the pause until the run is in a pausable state.
func (f *fixture) pauseWhenRunning(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return f.exec.Pause() == nil }, 2*time.Second, time.Millisecond)
}

func waitResult(t *testing.T, ch <-chan runResult) runResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the run to finish")
		return runResult{}
	}
}

func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 32, 32))
}

func clickAction(kind model.ActionKind, position string) model.Action {
	return model.Action{Kind: kind, Click: &model.ClickParams{Position: position}}
}

func dragAction(from, to string, duration time.Duration) model.Action {
	return model.Action{Kind: model.ActionKindDrag, Drag: &model.DragParams{From: from, To: to, Duration: duration}}
}

func typeAction(text, position string) model.Action {
	return model.Action{Kind: model.ActionKindTypeText, TypeText: &model.TypeTextParams{Text: text, Position: position}}
}

func waitAction(d time.Duration) model.Action {
	return model.Action{Kind: model.ActionKindWait, Wait: &model.WaitParams{Duration: d}}
}

func searchAction(params model.TemplateSearchParams) model.Action {
	return model.Action{Kind: model.ActionKindTemplateSearch, TemplateSearch: &params}
}

func textWaitAction(params model.WaitForTextParams) model.Action {
	return model.Action{Kind: model.ActionKindWaitForText, WaitForText: &params}
}

func sequence(actions ...model.Action) model.Sequence {
	return model.Sequence{Name: "test-sequence", Actions: actions}
}

func newValidConfig(t *testing.T) executor.Config {
	require := require.New(t)

	in, err := inputfake.NewController(inputfake.ControllerConfig{})
	require.NoError(err)
	scr, err := screenfake.NewCapturer(screenfake.CapturerConfig{})
	require.NoError(err)
	det, err := detectfake.NewDetector(detectfake.DetectorConfig{})
	require.NoError(err)
	rec, err := recognizefake.NewRecognizer(recognizefake.RecognizerConfig{})
	require.NoError(err)

	return executor.Config{
		Positions:  testResolver{},
		Input:      in,
		Screen:     scr,
		Detector:   det,
		Recognizer: rec,
	}
}

func TestExecutorConfig(t *testing.T) {
	tests := map[string]struct {
		mutate func(c *executor.Config)
		expErr bool
	}{
		"A config with all the required collaborators should be valid.": {
			mutate: func(c *executor.Config) {},
		},

		"A config without a position resolver should fail.": {
			mutate: func(c *executor.Config) { c.Positions = nil },
			expErr: true,
		},

		"A config without an input controller should fail.": {
			mutate: func(c *executor.Config) { c.Input = nil },
			expErr: true,
		},

		"A config without a screen capturer should fail.": {
			mutate: func(c *executor.Config) { c.Screen = nil },
			expErr: true,
		},

		"A config without a detector should fail.": {
			mutate: func(c *executor.Config) { c.Detector = nil },
			expErr: true,
		},

		"A config without a recognizer should fail.": {
			mutate: func(c *executor.Config) { c.Recognizer = nil },
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			cfg := newValidConfig(t)
			test.mutate(&cfg)
			exec, err := executor.New(cfg)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(model.RunStatusIdle, exec.Status())
			}
		})
	}
}

func TestExecutorRun(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t, fixtureConfig{})
	seq := sequence(
		clickAction(model.ActionKindClick, "button"),
		clickAction(model.ActionKindRightClick, "button"),
		clickAction(model.ActionKindDoubleClick, "button"),
		dragAction("origin", "target", 50*time.Millisecond),
		typeAction("hello", ""),
		typeAction("world", "field"),
	)

	status, err := f.exec.Run(context.Background(), seq)

	require.NoError(err)
	assert.Equal(model.RunStatusCompleted, status)
	assert.Equal(model.RunStatusIdle, f.exec.Status())

	expCalls := []inputfake.Call{
		{Op: "click", X: 100, Y: 200, Button: input.MouseButtonLeft, Count: 1},
		{Op: "click", X: 100, Y: 200, Button: input.MouseButtonRight, Count: 1},
		{Op: "click", X: 100, Y: 200, Button: input.MouseButtonLeft, Count: 2},
		{Op: "drag", X: 10, Y: 20, ToX: 300, ToY: 400, Duration: 50 * time.Millisecond},
		{Op: "type_text", Text: "hello"},
		{Op: "click", X: 50, Y: 60, Button: input.MouseButtonLeft, Count: 1},
		{Op: "type_text", Text: "world"},
	}
	assert.Equal(expCalls, f.input.Calls())

	assert.Equal([]int{0, 1, 2, 3, 4, 5}, f.events.steps())
	assert.Equal(1, f.events.count(executor.EventSequenceCompleted))
	assert.Equal(0, f.events.count(executor.EventError))
}

func TestExecutorRunInvalidSequence(t *testing.T) {
	tests := map[string]struct {
		seq model.Sequence
	}{
		"A sequence without a name should fail.": {
			seq: model.Sequence{Actions: []model.Action{clickAction(model.ActionKindClick, "button")}},
		},

		"A sequence without actions should fail.": {
			seq: model.Sequence{Name: "empty"},
		},

		"A sequence with mismatched action parameters should fail.": {
			seq: model.Sequence{Name: "mismatched", Actions: []model.Action{
				{Kind: model.ActionKindClick, Wait: &model.WaitParams{Duration: time.Second}},
			}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			f := newFixture(t, fixtureConfig{})
			status, err := f.exec.Run(context.Background(), test.seq)

			assert.True(errors.Is(err, model.ErrNotValid))
			assert.Equal(model.RunStatusFailed, status)
			assert.Empty(f.input.Calls())

			errEvents := f.events.ofType(executor.EventError)
			if assert.Len(errEvents, 1) {
				assert.Equal(-1, errEvents[0].Step)
			}
		})
	}
}

func TestExecutorRunAlreadyRunning(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t, fixtureConfig{})
	resCh := f.start(context.Background(), sequence(waitAction(10*time.Second)))
	f.waitRunning(t)

	status, err := f.exec.Run(context.Background(), sequence(clickAction(model.ActionKindClick, "button")))

	assert.True(errors.Is(err, model.ErrAlreadyRunning))
	assert.Equal(model.RunStatusRunning, status)
	assert.Empty(f.input.Calls())

	require.NoError(f.exec.Stop())
	res := waitResult(t, resCh)
	assert.Equal(model.RunStatusStopped, res.status)
	assert.NoError(res.err)
}

func TestExecutorRunUnknownPosition(t *testing.T) {
	assert := assert.New(t)

	f := newFixture(t, fixtureConfig{})
	status, err := f.exec.Run(context.Background(), sequence(clickAction(model.ActionKindClick, "missing")))

	assert.True(errors.Is(err, model.ErrNotFound))
	assert.Contains(err.Error(), "step 0 (click)")
	assert.Equal(model.RunStatusFailed, status)
	assert.Empty(f.input.Calls())

	errEvents := f.events.ofType(executor.EventError)
	if assert.Len(errEvents, 1) {
		assert.Equal(0, errEvents[0].Step)
	}
}

func TestExecutorControlsWhenIdle(t *testing.T) {
	tests := map[string]struct {
		control func(e *executor.Executor) error
	}{
		"Pausing an idle executor should fail.":  {control: func(e *executor.Executor) error { return e.Pause() }},
		"Resuming an idle executor should fail.": {control: func(e *executor.Executor) error { return e.Resume() }},
		"Stepping an idle executor should fail.": {control: func(e *executor.Executor) error { return e.Step() }},
		"Stopping an idle executor should fail.": {control: func(e *executor.Executor) error { return e.Stop() }},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			f := newFixture(t, fixtureConfig{})
			err := test.control(f.exec)

			assert.True(errors.Is(err, model.ErrNotValid))
		})
	}
}

func TestExecutorPauseResume(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t, fixtureConfig{stepDelay: 200 * time.Millisecond})
	seq := sequence(
		clickAction(model.ActionKindClick, "button"),
		clickAction(model.ActionKindClick, "button"),
		clickAction(model.ActionKindClick, "button"),
	)
	resCh := f.start(context.Background(), seq)

	f.pauseWhenRunning(t)
	assert.Equal(model.RunStatusPaused, f.exec.Status())
	assert.True(errors.Is(f.exec.Pause(), model.ErrNotValid))

	// No actions dispatch while paused.
	time.Sleep(100 * time.Millisecond)
	before := len(f.input.Calls())
	time.Sleep(150 * time.Millisecond)
	assert.Equal(before, len(f.input.Calls()))

	require.NoError(f.exec.Resume())
	assert.True(errors.Is(f.exec.Resume(), model.ErrNotValid))

	res := waitResult(t, resCh)
	assert.Equal(model.RunStatusCompleted, res.status)
	assert.NoError(res.err)

	assert.Equal([]int{0, 1, 2}, f.events.steps())
	assert.Equal(1, f.events.count(executor.EventPaused))
	assert.Equal(1, f.events.count(executor.EventResumed))
}

func TestExecutorStep(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t, fixtureConfig{stepDelay: 200 * time.Millisecond})
	seq := sequence(
		clickAction(model.ActionKindClick, "button"),
		clickAction(model.ActionKindClick, "button"),
		clickAction(model.ActionKindClick, "button"),
	)
	resCh := f.start(context.Background(), seq)

	f.waitRunning(t)
	assert.True(errors.Is(f.exec.Step(), model.ErrNotValid))

	f.pauseWhenRunning(t)
	time.Sleep(100 * time.Millisecond)

	// Every step dispatches exactly one action and stays paused.
	base := len(f.input.Calls())
	for n := base; n < len(seq.Actions); n++ {
		require.NoError(f.exec.Step())
		require.Eventually(func() bool { return len(f.input.Calls()) == n+1 }, 2*time.Second, time.Millisecond)
		if n < len(seq.Actions)-1 {
			time.Sleep(100 * time.Millisecond)
			assert.Equal(n+1, len(f.input.Calls()))
			assert.Equal(model.RunStatusPaused, f.exec.Status())
		}
	}

	res := waitResult(t, resCh)
	assert.Equal(model.RunStatusCompleted, res.status)
	assert.NoError(res.err)
	assert.Equal([]int{0, 1, 2}, f.events.steps())
}

func TestExecutorStop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t, fixtureConfig{})
	start := time.Now()
	resCh := f.start(context.Background(), sequence(waitAction(10*time.Second)))

	f.waitRunning(t)
	require.NoError(f.exec.Stop())

	res := waitResult(t, resCh)
	assert.Equal(model.RunStatusStopped, res.status)
	assert.NoError(res.err)
	assert.Less(time.Since(start), 2*time.Second)
	assert.Equal(model.RunStatusIdle, f.exec.Status())

	// A stop is not a failure, nor a completion.
	assert.Equal(0, f.events.count(executor.EventError))
	assert.Equal(0, f.events.count(executor.EventSequenceCompleted))
}

func TestExecutorEmergencyStop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t, fixtureConfig{})
	resCh := f.start(context.Background(), sequence(waitAction(10*time.Second)))
	f.waitRunning(t)

	f.stop.Trigger()

	res := waitResult(t, resCh)
	assert.Equal(model.RunStatusStopped, res.status)
	assert.NoError(res.err)
	assert.Equal(0, f.events.count(executor.EventError))

	// The source latches: the next run stops before dispatching anything.
	status, err := f.exec.Run(context.Background(), sequence(clickAction(model.ActionKindClick, "button")))
	require.NoError(err)
	assert.Equal(model.RunStatusStopped, status)
	assert.Empty(f.input.Calls())

	// Resetting the source makes runs possible again.
	f.stop.Reset()
	status, err = f.exec.Run(context.Background(), sequence(clickAction(model.ActionKindClick, "button")))
	require.NoError(err)
	assert.Equal(model.RunStatusCompleted, status)
	assert.Len(f.input.Calls(), 1)
}

func TestExecutorContextCancel(t *testing.T) {
	assert := assert.New(t)

	f := newFixture(t, fixtureConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	resCh := f.start(ctx, sequence(waitAction(10*time.Second)))
	f.waitRunning(t)

	cancel()

	res := waitResult(t, resCh)
	assert.Equal(model.RunStatusStopped, res.status)
	assert.NoError(res.err)
}

func TestExecutorLoop(t *testing.T) {
	loopOn := true
	loopOff := false

	tests := map[string]struct {
		seqLoop bool
		cfgLoop *bool
		loops   bool
	}{
		"A looping sequence should restart from the first action.": {
			seqLoop: true,
			loops:   true,
		},

		"The loop override should force looping on a non looping sequence.": {
			seqLoop: false,
			cfgLoop: &loopOn,
			loops:   true,
		},

		"The loop override should force a looping sequence to run once.": {
			seqLoop: true,
			cfgLoop: &loopOff,
			loops:   false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			f := newFixture(t, fixtureConfig{stepDelay: 5 * time.Millisecond, loop: test.cfgLoop})
			seq := sequence(
				clickAction(model.ActionKindClick, "button"),
				clickAction(model.ActionKindClick, "button"),
			)
			seq.Loop = test.seqLoop

			if !test.loops {
				status, err := f.exec.Run(context.Background(), seq)

				require.NoError(err)
				assert.Equal(model.RunStatusCompleted, status)
				assert.Len(f.input.Calls(), 2)
				assert.Equal([]int{0, 1}, f.events.steps())
				assert.Equal(1, f.events.count(executor.EventSequenceCompleted))
				return
			}

			resCh := f.start(context.Background(), seq)
			require.Eventually(func() bool { return len(f.input.Calls()) >= 6 }, 5*time.Second, time.Millisecond)
			require.NoError(f.exec.Stop())

			res := waitResult(t, resCh)
			assert.Equal(model.RunStatusStopped, res.status)
			assert.NoError(res.err)
			assert.Equal([]int{0, 1, 0, 1, 0, 1}, f.events.steps()[:6])
			assert.Equal(0, f.events.count(executor.EventSequenceCompleted))
		})
	}
}

func TestExecutorStepDelay(t *testing.T) {
	tests := map[string]struct {
		seqDelay time.Duration
		cfgDelay time.Duration
	}{
		"The sequence step delay should pace consecutive actions.": {
			seqDelay: 150 * time.Millisecond,
		},

		"The step delay override should win over the sequence delay.": {
			seqDelay: time.Millisecond,
			cfgDelay: 150 * time.Millisecond,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			f := newFixture(t, fixtureConfig{stepDelay: test.cfgDelay})
			seq := sequence(
				clickAction(model.ActionKindClick, "button"),
				clickAction(model.ActionKindClick, "button"),
			)
			seq.StepDelay = test.seqDelay

			start := time.Now()
			status, err := f.exec.Run(context.Background(), seq)

			require.NoError(err)
			assert.Equal(model.RunStatusCompleted, status)
			assert.GreaterOrEqual(time.Since(start), 150*time.Millisecond)
		})
	}
}

func TestExecutorSimulation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	f := newFixture(t, fixtureConfig{simulate: true, templateNames: []string{"menu"}})
	seq := sequence(
		clickAction(model.ActionKindClick, "button"),
		clickAction(model.ActionKindRightClick, "button"),
		clickAction(model.ActionKindDoubleClick, "button"),
		dragAction("origin", "target", 50*time.Millisecond),
		typeAction("hello", "field"),
		waitAction(10*time.Millisecond),
		searchAction(model.TemplateSearchParams{AllTemplates: true, Confidence: 0.9, Timeout: time.Second}),
		textWaitAction(model.WaitForTextParams{Text: "ready", Timeout: time.Second}),
	)

	status, err := f.exec.Run(context.Background(), seq)

	require.NoError(err)
	assert.Equal(model.RunStatusCompleted, status)

	// Simulation touches no collaborator.
	assert.Empty(f.input.Calls())
	assert.Equal(0, f.screen.Calls())
	assert.Equal(0, f.detector.Calls())
	assert.Equal(0, f.recognizer.Calls())

	assert.Equal([]int{0, 1, 2, 3, 4, 5, 6, 7}, f.events.steps())
	assert.Equal(1, f.events.count(executor.EventSequenceCompleted))
}

func TestExecutorSimulationUnknownPosition(t *testing.T) {
	assert := assert.New(t)

	f := newFixture(t, fixtureConfig{simulate: true})
	status, err := f.exec.Run(context.Background(), sequence(clickAction(model.ActionKindClick, "missing")))

	// Position resolution still runs in simulation.
	assert.True(errors.Is(err, model.ErrNotFound))
	assert.Equal(model.RunStatusFailed, status)
	assert.Empty(f.input.Calls())
}
