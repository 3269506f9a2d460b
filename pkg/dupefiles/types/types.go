// Package types provides core data types for the dupefiles duplicate finder.
// It includes the per-file entry, fingerprint and filesystem identity values,
// reported duplicate pairs and scan results, along with utility functions for
// parsing and formatting file sizes.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = humanize.KiByte
	MiB int64 = humanize.MiByte
	GiB int64 = humanize.GiByte
	TiB int64 = humanize.TiByte
)

// FileEntry describes one filesystem node visited during a scan.
type FileEntry struct {
	// Path is the absolute path to the entry.
	Path string `json:"path"`

	// Name is the base name of the entry.
	Name string `json:"name"`

	// Size is the length in bytes. For symlinks this is the size of the target.
	Size int64 `json:"size"`

	// IsSymlink reports whether the entry itself is a symbolic link.
	IsSymlink bool `json:"is_symlink,omitempty"`
}

// HumanSize returns the entry size formatted with binary units.
func (e *FileEntry) HumanSize() string {
	return FormatSize(e.Size)
}

// FingerprintSize is the length in bytes of a Fingerprint (a SHA-256 digest).
const FingerprintSize = 32

// Fingerprint is the digest of a file's full content. Equality is bitwise.
type Fingerprint [FingerprintSize]byte

// String returns the lower-case hex encoding of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether the fingerprint has never been set.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Identity is the (device, inode) pair the operating system guarantees to be
// unique per physical file object. Hard links to one file share an Identity.
type Identity struct {
	Dev uint64 `json:"dev"`
	Ino uint64 `json:"ino"`
}

// String returns the identity in dev:ino form.
func (i Identity) String() string {
	return fmt.Sprintf("%d:%d", i.Dev, i.Ino)
}

// DuplicatePair is a confirmed pair of distinct files with identical content.
// PathA is the path seen first (the indexed candidate); PathB is the later arrival.
type DuplicatePair struct {
	PathA string `json:"path_a" yaml:"path_a"`
	SizeA int64  `json:"size_a" yaml:"size_a"`
	PathB string `json:"path_b" yaml:"path_b"`
	SizeB int64  `json:"size_b" yaml:"size_b"`
}

// ScanResult contains the aggregated statistics of a finished scan.
type ScanResult struct {
	// ID identifies the scan in logs and structured reports.
	ID string `json:"id"`

	// Root is the absolute directory that was scanned.
	Root string `json:"root"`

	// FilesVisited is the number of non-directory entries the walk produced.
	FilesVisited int64 `json:"files_visited"`

	// FilesHashed is the number of files whose content was fingerprinted.
	FilesHashed int64 `json:"files_hashed"`

	// BytesHashed is the total size of all fingerprinted files.
	BytesHashed int64 `json:"bytes_hashed"`

	// Skipped counts skipped entries by classifier verdict name.
	Skipped map[string]int64 `json:"skipped,omitempty"`

	// Duplicates is the number of confirmed pairs handed to the report sink.
	Duplicates int64 `json:"duplicates"`

	// Elapsed is the total time taken to complete the scan.
	Elapsed time.Duration `json:"elapsed"`

	// Errors contains the per-file problems encountered during scanning.
	Errors []ScanError `json:"errors,omitempty"`
}

// ScanError represents an error encountered during scanning.
// It pairs a file path with the error message for debugging and reporting.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It accepts plain byte counts ("1024") and K, M, G and T suffixes with an
// optional B or iB ("512B", "100K", "50MiB", "2GB"). All units are binary.
// Decimal values are truncated to the nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// sizeUnits lists the binary units FormatSize scales to, largest first.
var sizeUnits = []struct {
	size   uint64
	suffix string
}{
	{humanize.TiByte, "TiB"},
	{humanize.GiByte, "GiB"},
	{humanize.MiByte, "MiB"},
	{humanize.KiByte, "KiB"},
}

// FormatSize converts a size in bytes to the report's human-readable form.
// Sizes under one KiB are whole bytes ("5 B"); larger sizes carry one decimal
// place in the largest binary unit that fits, up to TiB ("1.5 MiB", "241.0 TiB").
func FormatSize(bytes int64) string {
	if bytes < KiB {
		return fmt.Sprintf("%d B", bytes)
	}

	b := uint64(bytes)
	for _, u := range sizeUnits {
		if b >= u.size {
			return fmt.Sprintf("%.1f %s", float64(b)/float64(u.size), u.suffix)
		}
	}
	return fmt.Sprintf("%d B", bytes)
}
