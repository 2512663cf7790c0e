package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	inputrobotgo "github.com/slok/seqr/internal/input/robotgo"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/printer"
	"github.com/slok/seqr/internal/recognize/tesseract"
	screenrobotgo "github.com/slok/seqr/internal/screen/robotgo"
	"github.com/slok/seqr/internal/storage/sqlite"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	templatesDir string
	format       string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the execution environment.")
	c.Cmd.Flag("templates-dir", "Directory with template images (defaults to the data directory's).").StringVar(&c.templatesDir)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	results := []model.CheckResult{}
	results = append(results, c.checkDataDir())
	results = append(results, c.checkDatabase(ctx, logger))
	results = append(results, c.checkTemplates())

	// Collaborator probes (screen capture, input injection, OCR binary).
	capturer, err := screenrobotgo.NewCapturer(screenrobotgo.CapturerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create screen capturer: %w", err)
	}
	results = append(results, capturer.Check(ctx)...)

	controller, err := inputrobotgo.NewController(inputrobotgo.ControllerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create input controller: %w", err)
	}
	results = append(results, controller.Check(ctx)...)

	recognizer, err := tesseract.NewRecognizer(tesseract.RecognizerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create recognizer: %w", err)
	}
	results = append(results, recognizer.Check(ctx)...)

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintCheckResults(results); err != nil {
		return fmt.Errorf("could not print check results: %w", err)
	}

	if model.HasErrors(results) {
		_, _, errors := model.CountByStatus(results)
		return fmt.Errorf("preflight checks failed with %d error(s)", errors)
	}

	return nil
}

func (c DoctorCommand) checkDataDir() model.CheckResult {
	info, err := os.Stat(c.rootCmd.DataDir)
	switch {
	case os.IsNotExist(err):
		return model.CheckResult{
			ID:      "data_dir",
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("%s does not exist yet, it will be created on first use", c.rootCmd.DataDir),
		}
	case err != nil:
		return model.CheckResult{
			ID:      "data_dir",
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("could not stat %s: %s", c.rootCmd.DataDir, err),
		}
	case !info.IsDir():
		return model.CheckResult{
			ID:      "data_dir",
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("%s is not a directory", c.rootCmd.DataDir),
		}
	}

	return model.CheckResult{
		ID:      "data_dir",
		Status:  model.CheckStatusOK,
		Message: c.rootCmd.DataDir,
	}
}

func (c DoctorCommand) checkDatabase(ctx context.Context, logger log.Logger) model.CheckResult {
	dbPath := c.rootCmd.DBFile()
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: dbPath,
		Logger: logger,
	})
	if err != nil {
		return model.CheckResult{
			ID:      "database",
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("could not open %s: %s", dbPath, err),
		}
	}
	defer repo.Close()

	return model.CheckResult{
		ID:      "database",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("%s opens and migrations apply", dbPath),
	}
}

func (c DoctorCommand) checkTemplates() model.CheckResult {
	templatesDir := c.rootCmd.TemplatesDir(c.templatesDir)

	entries, err := os.ReadDir(templatesDir)
	if err != nil {
		return model.CheckResult{
			ID:      "templates_dir",
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("%s is not readable, template searches will have nothing to match", templatesDir),
		}
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".png") {
			count++
		}
	}
	if count == 0 {
		return model.CheckResult{
			ID:      "templates_dir",
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("no PNG templates in %s", templatesDir),
		}
	}

	return model.CheckResult{
		ID:      "templates_dir",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("%d templates in %s", count, templatesDir),
	}
}
