package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/seqr/internal/app/record"
	inputrobotgo "github.com/slok/seqr/internal/input/robotgo"
	"github.com/slok/seqr/internal/printer"
	"github.com/slok/seqr/internal/storage/sqlite"
)

type RecordCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	positionName string
	delay        time.Duration
}

// NewRecordCommand returns the record command.
func NewRecordCommand(rootCmd *RootCommand, app *kingpin.Application) *RecordCommand {
	c := &RecordCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("record", "Store the current mouse position under a name.")
	c.Cmd.Arg("name", "Position name.").Required().StringVar(&c.positionName)
	c.Cmd.Flag("delay", "Countdown before the pointer is sampled.").Default("3s").DurationVar(&c.delay)

	return c
}

func (c RecordCommand) Name() string { return c.Cmd.FullCommand() }

func (c RecordCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBFile(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// The pointer is read from the real input controller.
	controller, err := inputrobotgo.NewController(inputrobotgo.ControllerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create input controller: %w", err)
	}

	// Create record service.
	svc, err := record.NewService(record.ServiceConfig{
		Repository: repo,
		Input:      controller,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute record.
	position, err := svc.Run(ctx, record.Request{
		Name:  c.positionName,
		Delay: c.delay,
	})
	if err != nil {
		return fmt.Errorf("could not record position: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	msg := fmt.Sprintf("Recorded position %q at (%d, %d)", position.Name, position.X, position.Y)
	if err := p.PrintMessage(msg); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
