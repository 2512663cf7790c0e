package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/seqr/internal/app/seqimport"
	"github.com/slok/seqr/internal/conventions"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/printer"
	"github.com/slok/seqr/internal/storage"
	"github.com/slok/seqr/internal/storage/io"
	"github.com/slok/seqr/internal/storage/sqlite"
)

type ImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	libraryFile string
}

// NewImportCommand returns the import command.
func NewImportCommand(rootCmd *RootCommand, app *kingpin.Application) *ImportCommand {
	c := &ImportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("import", "Import positions and sequences from a YAML library file.")
	c.Cmd.Flag("file", "Path to the library YAML file (defaults to the data directory's).").Short('f').StringVar(&c.libraryFile)

	return c
}

func (c ImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBFile(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	libraryFile := c.libraryFile
	if libraryFile == "" {
		libraryFile = conventions.LibraryPath(c.rootCmd.DataDir)
	}

	result, err := importLibrary(ctx, repo, libraryFile, logger)
	if err != nil {
		return err
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	msg := fmt.Sprintf("Imported %d positions (%d sequences created, %d updated)",
		result.PositionsImported, result.SequencesCreated, result.SequencesUpdated)
	if err := p.PrintMessage(msg); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}

// importLibrary loads a YAML library file into the given repository.
func importLibrary(ctx context.Context, repo storage.Repository, file string, logger log.Logger) (*seqimport.Result, error) {
	path := file
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("could not resolve library path: %w", err)
		}
		path = absPath
	}

	svc, err := seqimport.NewService(seqimport.ServiceConfig{
		Repository: repo,
		Library:    io.NewLibraryYAMLRepository(os.DirFS("/")),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create import service: %w", err)
	}

	result, err := svc.Run(ctx, seqimport.Request{Path: path[1:]})
	if err != nil {
		return nil, fmt.Errorf("could not import library: %w", err)
	}

	return result, nil
}
