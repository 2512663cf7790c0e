package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/seqr/internal/app/run"
	"github.com/slok/seqr/internal/detect"
	detectfake "github.com/slok/seqr/internal/detect/fake"
	"github.com/slok/seqr/internal/detect/pixel"
	"github.com/slok/seqr/internal/input"
	inputfake "github.com/slok/seqr/internal/input/fake"
	inputrobotgo "github.com/slok/seqr/internal/input/robotgo"
	"github.com/slok/seqr/internal/interrupt"
	"github.com/slok/seqr/internal/interrupt/keyboard"
	"github.com/slok/seqr/internal/notify"
	"github.com/slok/seqr/internal/printer"
	"github.com/slok/seqr/internal/recognize"
	recognizefake "github.com/slok/seqr/internal/recognize/fake"
	"github.com/slok/seqr/internal/recognize/tesseract"
	"github.com/slok/seqr/internal/screen"
	screenfake "github.com/slok/seqr/internal/screen/fake"
	screenrobotgo "github.com/slok/seqr/internal/screen/robotgo"
	"github.com/slok/seqr/internal/storage"
	"github.com/slok/seqr/internal/storage/memory"
	"github.com/slok/seqr/internal/storage/sqlite"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	sequenceName string
	libraryFile  string
	simulate     bool
	loop         bool
	noLoop       bool
	stepDelay    time.Duration
	stopKey      string
	templatesDir string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Execute a stored sequence.")
	c.Cmd.Arg("name", "Sequence name.").Required().StringVar(&c.sequenceName)
	c.Cmd.Flag("file", "Run from a YAML library file instead of the database.").Short('f').StringVar(&c.libraryFile)
	c.Cmd.Flag("simulate", "Log every action instead of dispatching input.").BoolVar(&c.simulate)
	c.Cmd.Flag("loop", "Loop the sequence regardless of its stored setting.").BoolVar(&c.loop)
	c.Cmd.Flag("no-loop", "Run once regardless of the sequence's stored setting.").BoolVar(&c.noLoop)
	c.Cmd.Flag("step-delay", "Delay between actions, overriding the sequence's own.").DurationVar(&c.stepDelay)
	c.Cmd.Flag("stop-key", "Key that stops the execution from anywhere.").Default("esc").StringVar(&c.stopKey)
	c.Cmd.Flag("templates-dir", "Directory with template images (defaults to the data directory's).").StringVar(&c.templatesDir)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.loop && c.noLoop {
		return fmt.Errorf("--loop and --no-loop are mutually exclusive")
	}

	// The library file replaces the database when given: its contents are
	// loaded into an in-memory repository and the run record stays there.
	var repo storage.Repository
	if c.libraryFile != "" {
		memRepo, err := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		if _, err := importLibrary(ctx, memRepo, c.libraryFile, logger); err != nil {
			return err
		}
		repo = memRepo
	} else {
		sqliteRepo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBFile(),
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		repo = sqliteRepo
	}

	// Collaborators: the real OS surfaces, or inert fakes when simulating.
	var (
		scr screen.Capturer
		in  input.Controller
		det detect.Detector
		rec recognize.Recognizer
		src interrupt.Source
		not notify.Notifier
	)
	if c.simulate {
		var err error
		scr, err = screenfake.NewCapturer(screenfake.CapturerConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create screen capturer: %w", err)
		}
		in, err = inputfake.NewController(inputfake.ControllerConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create input controller: %w", err)
		}
		det, err = detectfake.NewDetector(detectfake.DetectorConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create detector: %w", err)
		}
		rec, err = recognizefake.NewRecognizer(recognizefake.RecognizerConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create recognizer: %w", err)
		}
		src = interrupt.None
		not = notify.Noop
	} else {
		var err error
		scr, err = screenrobotgo.NewCapturer(screenrobotgo.CapturerConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create screen capturer: %w", err)
		}
		in, err = inputrobotgo.NewController(inputrobotgo.ControllerConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create input controller: %w", err)
		}

		templatesDir := c.rootCmd.TemplatesDir(c.templatesDir)
		if err := os.MkdirAll(templatesDir, 0755); err != nil {
			return fmt.Errorf("could not ensure templates directory: %w", err)
		}
		det, err = pixel.NewDetector(pixel.DetectorConfig{
			TemplatesFS: os.DirFS(templatesDir),
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("could not create detector: %w", err)
		}

		rec, err = tesseract.NewRecognizer(tesseract.RecognizerConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create recognizer: %w", err)
		}

		keySrc, err := keyboard.NewSource(keyboard.SourceConfig{
			StopKey: c.stopKey,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("could not create stop key source: %w", err)
		}
		defer keySrc.Close()
		src = keySrc

		bell, err := notify.NewBell(notify.BellConfig{Out: c.rootCmd.Stdout, Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create notifier: %w", err)
		}
		not = bell
	}

	// Create run service.
	svc, err := run.NewService(run.ServiceConfig{
		Repository: repo,
		Screen:     scr,
		Input:      in,
		Detector:   det,
		Recognizer: rec,
		Interrupt:  src,
		Notifier:   not,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	var loopOverride *bool
	if c.loop {
		v := true
		loopOverride = &v
	}
	if c.noLoop {
		v := false
		loopOverride = &v
	}

	// Execute run.
	result, err := svc.Run(ctx, run.Request{
		SequenceName: c.sequenceName,
		Simulate:     c.simulate,
		Loop:         loopOverride,
		StepDelay:    c.stepDelay,
	})
	if err != nil {
		return fmt.Errorf("could not run sequence: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	msg := fmt.Sprintf("Run %s finished: %s (%d steps)", result.ID, result.Status, result.StepsDone)
	if err := p.PrintMessage(msg); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
