// Package scanner walks a directory tree and reports duplicate regular files.
// It classifies every entry, fingerprints eligible files on a bounded worker
// pool, and routes fingerprint collisions through verification before a pair
// is handed to the report sink.
package scanner

import (
	"os"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/config"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/fingerprint"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/logging"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/report"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/tuner"
)

// Options configures the scanner behavior.
type Options struct {
	// Root is the directory to scan. It must exist and be a directory.
	Root string

	// Extensions is an optional case-insensitive allow-list ("txt", ".JPG").
	// Empty means every extension is eligible.
	Extensions []string

	// Exclude contains glob patterns for paths to skip during scanning.
	// Scan fails with filter.ErrInvalidPattern if any does not compile.
	Exclude []string

	// Workers is the number of concurrent fingerprint workers.
	// Index updates and verification always run on a single goroutine.
	Workers int

	// WalkWorkers is the number of directory walk goroutines.
	WalkWorkers int

	// QueueSize is the buffer of the channels between walk, hash and index.
	QueueSize int

	// BufferSize is the read chunk size used when hashing, in bytes.
	BufferSize int

	// Algorithm selects the fingerprint digest. Empty means SHA-256.
	Algorithm fingerprint.Algorithm

	// Sink receives confirmed pairs. Nil means CSV on standard output.
	Sink report.Sink

	// Logger receives per-file warnings and debug output.
	// Nil means the package logger.
	Logger *logging.Logger
}

// DefaultOptions returns options tuned to the detected system resources.
func DefaultOptions() Options {
	tuned := tuner.Calculate(tuner.DetectOrFallback())
	return Options{
		Root:        config.DefaultPath,
		Workers:     tuned.HashWorkers,
		WalkWorkers: tuned.WalkWorkers,
		QueueSize:   tuned.QueueSize,
		BufferSize:  fingerprint.DefaultBufferSize,
		Algorithm:   fingerprint.DefaultAlgorithm,
	}
}

// Validate applies defaults to unset or invalid values.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = config.DefaultPath
	}
	if o.Workers < 1 || o.WalkWorkers < 1 || o.QueueSize < 1 {
		tuned := tuner.CalculateWithOverrides(tuner.DetectOrFallback(), o.Workers)
		if o.Workers < 1 {
			o.Workers = tuned.HashWorkers
		}
		if o.WalkWorkers < 1 {
			o.WalkWorkers = tuned.WalkWorkers
		}
		if o.QueueSize < 1 {
			o.QueueSize = tuned.QueueSize
		}
	}
	if o.BufferSize < 1 {
		o.BufferSize = fingerprint.DefaultBufferSize
	}
	if o.Algorithm == "" {
		o.Algorithm = fingerprint.DefaultAlgorithm
	}
	if o.Sink == nil {
		o.Sink = report.NewCSVSink(os.Stdout)
	}
	if o.Logger == nil {
		o.Logger = logging.Get("scanner")
	}
	return nil
}
