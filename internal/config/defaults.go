// Package config provides configuration loading and defaults for ecksnap.
package config

// DefaultConfigDir is the default location for ecksnap configuration.
const DefaultConfigDir = "~/.config/ecksnap"

// DefaultDBName is the filename for the SQLite run-history database.
const DefaultDBName = "ecksnap.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultOutputDir is where snapshot artifacts land.
const DefaultOutputDir = "."

// DefaultFormat is the artifact rendering, "text" or "json".
const DefaultFormat = "text"

// DefaultWorkers bounds concurrent file reads during a scan.
const DefaultWorkers = 10

// DefaultRestoreWorkers bounds concurrent file writes during a restore.
const DefaultRestoreWorkers = 8

// DefaultMaxFileSize is the per-file size ceiling; larger files are
// skipped with a reason instead of read.
const DefaultMaxFileSize = "1 MB"

// DefaultMaxTotalSize caps the aggregate snapshot content.
const DefaultMaxTotalSize = "50 MB"

// DefaultWatchInterval is the polling cadence of watch mode.
const DefaultWatchInterval = "2m"

// DefaultIgnoreDirectories are directory names excluded wherever they
// appear in a path.
var DefaultIgnoreDirectories = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	"out",
	"coverage",
	"vendor",
	"target",
	"__pycache__",
	".next",
	".idea",
	".vscode",
	"venv",
	".venv",
}

// DefaultIgnoreExtensions are leaf-name suffixes excluded by default.
var DefaultIgnoreExtensions = []string{
	".env",
	".log",
	".lock",
	".tmp",
	".swp",
	".map",
	".min.js",
	".min.css",
}

// DefaultIgnorePatterns are leaf-name globs excluded by default. The
// snapshot patterns keep a tool run from swallowing its own output.
var DefaultIgnorePatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"*.snapshot.txt",
	"*.snapshot.json",
	"*.snapshot.txt.gz",
	"*.snapshot.json.gz",
}
