package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/seqr/internal/app/list"
	"github.com/slok/seqr/internal/printer"
	"github.com/slok/seqr/internal/storage/sqlite"
)

type PositionsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewPositionsCommand returns the positions command.
func NewPositionsCommand(rootCmd *RootCommand, app *kingpin.Application) *PositionsCommand {
	c := &PositionsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("positions", "List stored positions.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c PositionsCommand) Name() string { return c.Cmd.FullCommand() }

func (c PositionsCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBFile(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// Create list service.
	svc, err := list.NewService(list.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute list.
	positions, err := svc.Positions(ctx)
	if err != nil {
		return fmt.Errorf("could not list positions: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintPositionList(positions); err != nil {
		return fmt.Errorf("could not print positions: %w", err)
	}

	return nil
}
