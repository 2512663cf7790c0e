package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/seqr/internal/app/validate"
	"github.com/slok/seqr/internal/detect/pixel"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/printer"
	"github.com/slok/seqr/internal/storage/sqlite"
)

type ValidateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	sequenceName string
	templatesDir string
	format       string
}

// NewValidateCommand returns the validate command.
func NewValidateCommand(rootCmd *RootCommand, app *kingpin.Application) *ValidateCommand {
	c := &ValidateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("validate", "Check stored sequences against positions and templates.")
	c.Cmd.Arg("name", "Sequence name (all sequences when omitted).").StringVar(&c.sequenceName)
	c.Cmd.Flag("templates-dir", "Directory with template images (defaults to the data directory's).").StringVar(&c.templatesDir)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ValidateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ValidateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBFile(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// Template checks run against what the detector actually loads.
	templatesDir := c.rootCmd.TemplatesDir(c.templatesDir)
	if err := os.MkdirAll(templatesDir, 0755); err != nil {
		return fmt.Errorf("could not ensure templates directory: %w", err)
	}
	detector, err := pixel.NewDetector(pixel.DetectorConfig{
		TemplatesFS: os.DirFS(templatesDir),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create detector: %w", err)
	}

	// Create validate service.
	svc, err := validate.NewService(validate.ServiceConfig{
		Repository: repo,
		Detector:   detector,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute validate.
	results, err := svc.Run(ctx, validate.Request{
		SequenceName: c.sequenceName,
	})
	if err != nil {
		return fmt.Errorf("could not validate: %w", err)
	}

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
		return fmt.Errorf("validation failed with %d error(s)", errors)
	}

	return nil
}
