// Package config provides configuration management for dupefiles.
package config

import "github.com/jamesainslie/dupefiles/pkg/dupefiles/report"

// Default configuration values for dupefiles.
const (
	// AppName names the config, state and env namespaces.
	AppName = "dupefiles"

	// EnvPrefix prefixes environment overrides (DUPEFILES_WORKERS=4).
	EnvPrefix = "DUPEFILES"

	// DefaultPath is the default path to scan when none is specified.
	DefaultPath = "."

	// DefaultBufferSize is the hash read chunk size.
	DefaultBufferSize = "1MiB"

	// DefaultWorkers of zero means one fingerprint worker per CPU.
	DefaultWorkers = 0

	// DefaultHash is the fingerprint algorithm.
	DefaultHash = "sha256"

	// DefaultFormat is the report format.
	DefaultFormat = report.DefaultFormat

	// DefaultLogLevel is the log file level.
	DefaultLogLevel = "info"
)

// DefaultExclusions contains patterns excluded from scanning by default.
// Hidden entries are always skipped and need no pattern.
var DefaultExclusions = []string{}
