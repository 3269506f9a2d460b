// Package filter decides which filesystem entries take part in duplicate
// detection. Hidden entries, broken symlinks, non-regular files, empty files
// and files outside an optional extension allow-list are skipped.
package filter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
)

// Verdict is the outcome of classifying one entry.
type Verdict int

// Classification verdicts, in the order the rules are applied.
const (
	Eligible Verdict = iota
	SkipHidden
	SkipExcluded
	SkipBrokenSymlink
	SkipNonFile
	SkipZeroLength
	SkipExtensionMismatch
)

// String returns the verdict name used in logs and scan statistics.
func (v Verdict) String() string {
	switch v {
	case Eligible:
		return "eligible"
	case SkipHidden:
		return "hidden"
	case SkipExcluded:
		return "excluded"
	case SkipBrokenSymlink:
		return "broken_symlink"
	case SkipNonFile:
		return "non_file"
	case SkipZeroLength:
		return "zero_length"
	case SkipExtensionMismatch:
		return "extension_mismatch"
	default:
		return "unknown"
	}
}

var (
	// ErrBrokenSymlink indicates a symlink whose target does not resolve.
	ErrBrokenSymlink = errors.New("broken symlink")

	// ErrMetadata indicates the entry's metadata could not be read.
	ErrMetadata = errors.New("cannot read metadata")

	// ErrInvalidPattern indicates an exclude pattern is not a valid glob.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)

// Classifier applies the eligibility rules relative to a scan root.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	root       string
	extensions map[string]struct{}
	exclude    []glob.Glob
}

// Option is a functional option for configuring a Classifier.
type Option func(*Classifier)

// WithExtensions sets the extension allow-list. Extensions are matched
// case-insensitively with leading dots stripped, so "TXT", ".txt" and "txt"
// are the same entry. An empty list allows every extension.
func WithExtensions(extensions ...string) Option {
	return func(c *Classifier) {
		for _, ext := range extensions {
			ext = NormalizeExtension(ext)
			if ext == "" {
				continue
			}
			if c.extensions == nil {
				c.extensions = make(map[string]struct{})
			}
			c.extensions[ext] = struct{}{}
		}
	}
}

// WithExclude sets glob patterns for paths to skip. Patterns are matched
// against the absolute path, the path relative to the root, and the base
// name. Invalid patterns are ignored here; reject them up front with
// ValidatePatterns.
func WithExclude(patterns ...string) Option {
	return func(c *Classifier) {
		for _, pattern := range patterns {
			g, err := compilePattern(pattern)
			if err != nil {
				continue
			}
			c.exclude = append(c.exclude, g)
		}
	}
}

// ValidatePatterns compiles every exclude pattern and reports all that fail,
// each wrapped in ErrInvalidPattern.
func ValidatePatterns(patterns ...string) error {
	var errs []error
	for _, pattern := range patterns {
		if _, err := compilePattern(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err))
		}
	}
	return errors.Join(errs...)
}

func compilePattern(pattern string) (glob.Glob, error) {
	return glob.Compile(pattern, filepath.Separator)
}

// New creates a Classifier for entries under root.
func New(root string, opts ...Option) *Classifier {
	c := &Classifier{root: filepath.Clean(root)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extensions returns the normalized allow-list, or nil when none is set.
func (c *Classifier) Extensions() []string {
	if len(c.extensions) == 0 {
		return nil
	}
	exts := make([]string, 0, len(c.extensions))
	for ext := range c.extensions {
		exts = append(exts, ext)
	}
	return exts
}

// Classify examines the entry at path and returns its details together with
// the verdict. A non-nil error accompanies SkipBrokenSymlink and metadata
// failures; callers report it as a warning and move on.
func (c *Classifier) Classify(path string) (types.FileEntry, Verdict, error) {
	entry := types.FileEntry{
		Path: path,
		Name: filepath.Base(path),
	}

	if c.IsHidden(path) {
		return entry, SkipHidden, nil
	}

	if c.isExcluded(path) {
		return entry, SkipExcluded, nil
	}

	linfo, err := os.Lstat(path)
	if err != nil {
		return entry, SkipNonFile, fmt.Errorf("%w: %s: %w", ErrMetadata, path, err)
	}

	info := linfo
	if linfo.Mode()&os.ModeSymlink != 0 {
		entry.IsSymlink = true
		info, err = os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				target, _ := os.Readlink(path)
				return entry, SkipBrokenSymlink, fmt.Errorf("%w: %s -> %s", ErrBrokenSymlink, path, target)
			}
			return entry, SkipNonFile, fmt.Errorf("%w: %s: %w", ErrMetadata, path, err)
		}
	}

	if !info.Mode().IsRegular() {
		return entry, SkipNonFile, nil
	}

	entry.Size = info.Size()
	if entry.Size == 0 {
		return entry, SkipZeroLength, nil
	}

	if !c.allowsExtension(entry.Name) {
		return entry, SkipExtensionMismatch, nil
	}

	return entry, Eligible, nil
}

// IsHidden reports whether any component of path begins with ".". Every
// ancestor counts, including those above the scan root.
func (c *Classifier) IsHidden(path string) bool {
	for _, part := range strings.Split(filepath.Clean(path), string(filepath.Separator)) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// isExcluded checks if a path matches any exclusion pattern.
func (c *Classifier) isExcluded(path string) bool {
	name := filepath.Base(path)
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		rel = path
	}
	for _, g := range c.exclude {
		if g.Match(path) || g.Match(rel) || g.Match(name) {
			return true
		}
	}
	return false
}

// IsExcludedDir reports whether the walker should prune the directory at path.
func (c *Classifier) IsExcludedDir(path string) bool {
	return c.ClassifyDir(path) != Eligible
}

// ClassifyDir returns SkipHidden or SkipExcluded for a directory the walker
// should prune, and Eligible otherwise.
func (c *Classifier) ClassifyDir(path string) Verdict {
	switch {
	case c.IsHidden(path):
		return SkipHidden
	case c.isExcluded(path):
		return SkipExcluded
	default:
		return Eligible
	}
}

// allowsExtension checks the file name's extension against the allow-list.
func (c *Classifier) allowsExtension(name string) bool {
	if len(c.extensions) == 0 {
		return true
	}
	ext := NormalizeExtension(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := c.extensions[ext]
	return ok
}

// NormalizeExtension lower-cases ext and strips leading dots and whitespace.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}
