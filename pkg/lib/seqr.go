package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/seqr/internal/app/run"
	"github.com/slok/seqr/internal/conventions"
	detectfake "github.com/slok/seqr/internal/detect/fake"
	inputfake "github.com/slok/seqr/internal/input/fake"
	"github.com/slok/seqr/internal/log"
	recognizefake "github.com/slok/seqr/internal/recognize/fake"
	screenfake "github.com/slok/seqr/internal/screen/fake"
	"github.com/slok/seqr/internal/storage"
	"github.com/slok/seqr/internal/storage/sqlite"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. An empty Config{} uses
// ~/.seqr/seqr.db for storage and fake collaborators, which is enough for
// managing sequences and executing them in simulation. Wire real collaborator
// implementations to execute against a live screen.
type Config struct {
	// DBPath is the SQLite database path.
	// Default: ~/.seqr/seqr.db.
	DBPath string

	// DataDir is the base directory for seqr data.
	// Default: ~/.seqr.
	DataDir string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Screen captures frames of the live view.
	// Default: fake capturer that never serves a frame.
	Screen Capturer

	// Input dispatches mouse and keyboard actions.
	// Default: fake controller that records calls and touches nothing.
	Input Controller

	// Detector matches image templates against captured frames.
	// Default: fake detector with no templates and no matches.
	Detector Detector

	// Recognizer extracts text from captured frames.
	// Default: fake recognizer that always reads empty text.
	Recognizer Recognizer

	// Interrupt is the emergency stop source polled during execution.
	// Default: a source that never trips.
	Interrupt InterruptSource

	// Overlay observes match activity during template searches.
	// Default: noop.
	Overlay Overlay

	// Notifier is invoked when a template search finds its target.
	// Default: noop.
	Notifier Notifier

	// SearchInterval is the polling interval of template searches.
	// Zero uses the executor default.
	SearchInterval time.Duration

	// TextInterval is the polling interval of text waits.
	// Zero uses the executor default.
	TextInterval time.Duration

	// ControlInterval is the polling interval of pause and stop checks.
	// Zero uses the executor default.
	ControlInterval time.Duration
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Screen == nil {
		scr, err := screenfake.NewCapturer(screenfake.CapturerConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create fake screen capturer: %w", err)
		}
		c.Screen = scr
	}

	if c.Input == nil {
		in, err := inputfake.NewController(inputfake.ControllerConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create fake input controller: %w", err)
		}
		c.Input = in
	}

	if c.Detector == nil {
		det, err := detectfake.NewDetector(detectfake.DetectorConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create fake detector: %w", err)
		}
		c.Detector = det
	}

	if c.Recognizer == nil {
		rec, err := recognizefake.NewRecognizer(recognizefake.RecognizerConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create fake recognizer: %w", err)
		}
		c.Recognizer = rec
	}

	return nil
}

// Client is the main SDK entry point for managing and executing sequences
// programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use, and holds a single execution slot:
// [Client.Execute] fails with [ErrAlreadyRunning] while a run is in progress.
type Client struct {
	repo     storage.Repository
	runner   *run.Service
	input    Controller
	detector Detector
	logger   log.Logger
	dataDir  string
	closeFn  func() error
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	// A single run service instance backs Execute and the control methods,
	// so Pause and friends always address the execution Execute started.
	runner, err := run.NewService(run.ServiceConfig{
		Repository:      repo,
		Screen:          cfg.Screen,
		Input:           cfg.Input,
		Detector:        cfg.Detector,
		Recognizer:      cfg.Recognizer,
		Interrupt:       cfg.Interrupt,
		Overlay:         cfg.Overlay,
		Notifier:        cfg.Notifier,
		SearchInterval:  cfg.SearchInterval,
		TextInterval:    cfg.TextInterval,
		ControlInterval: cfg.ControlInterval,
		Logger:          cfg.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create run service: %w", err)
	}

	return &Client{
		repo:     repo,
		runner:   runner,
		input:    cfg.Input,
		detector: cfg.Detector,
		logger:   cfg.Logger,
		dataDir:  cfg.DataDir,
		closeFn:  repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database
// connection. After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
