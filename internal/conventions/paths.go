package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default seqr data directory name (relative to home).
	DefaultDataDir = ".seqr"
	// TemplatesDir is the subdirectory for template images.
	TemplatesDir = "templates"

	// Data directory files.

	// DBFile is the SQLite database filename.
	DBFile = "seqr.db"
	// LibraryFile is the default library filename for imports and exports.
	LibraryFile = "library.yaml"
)

// DBPath returns the path to the SQLite database inside the data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// TemplatesPath returns the directory template images are loaded from.
func TemplatesPath(dataDir string) string {
	return filepath.Join(dataDir, TemplatesDir)
}

// LibraryPath returns the default library file path inside the data directory.
func LibraryPath(dataDir string) string {
	return filepath.Join(dataDir, LibraryFile)
}
