package seqr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/seqr/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "seqr"
	}

	// If relative, the caller should pass an absolute path via the env var,
	// because go test changes the CWD to the test package directory.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("SEQR_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("seqr binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "SEQR_INTEGRATION"
		envBinary     = "SEQR_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunSeqrCmd runs a seqr command with the given arguments against a specific
// database path. The data directory is forced next to the database so tests
// never touch the user's real one, and logging is suppressed for cleaner
// test output.
func RunSeqrCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --data-dir %s --db-path %s %s", filepath.Dir(dbPath), dbPath, cmdArgs)
	return testutils.RunSeqr(ctx, nil, config.Binary, args, true)
}

// RunImport imports a library file.
func RunImport(ctx context.Context, config Config, dbPath, libraryPath string) (stdout, stderr []byte, err error) {
	return RunSeqrCmd(ctx, config, dbPath, fmt.Sprintf("import --file %s", libraryPath))
}

// RunList lists sequences in JSON format.
func RunList(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunSeqrCmd(ctx, config, dbPath, "list --format json")
}

// RunShow shows one sequence in JSON format.
func RunShow(ctx context.Context, config Config, dbPath, name string) (stdout, stderr []byte, err error) {
	return RunSeqrCmd(ctx, config, dbPath, fmt.Sprintf("show %s --format json", name))
}

// RunPositions lists positions in JSON format.
func RunPositions(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunSeqrCmd(ctx, config, dbPath, "positions --format json")
}

// RunSimulate executes a sequence in simulation mode.
func RunSimulate(ctx context.Context, config Config, dbPath, name string) (stdout, stderr []byte, err error) {
	return RunSeqrCmd(ctx, config, dbPath, fmt.Sprintf("run %s --simulate", name))
}

// RunHistory lists past runs in JSON format.
func RunHistory(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunSeqrCmd(ctx, config, dbPath, "history --format json")
}

// RunValidate validates sequences in JSON format.
func RunValidate(ctx context.Context, config Config, dbPath, name string) (stdout, stderr []byte, err error) {
	args := "validate --format json"
	if name != "" {
		args = fmt.Sprintf("validate %s --format json", name)
	}
	return RunSeqrCmd(ctx, config, dbPath, args)
}

// RunRm removes a sequence.
func RunRm(ctx context.Context, config Config, dbPath, name string) (stdout, stderr []byte, err error) {
	return RunSeqrCmd(ctx, config, dbPath, fmt.Sprintf("rm %s", name))
}
