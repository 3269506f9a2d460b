// Package fingerprint computes content fingerprints of files for the dupefiles
// duplicate finder.
//
// A fingerprint is the 256-bit digest of a file's full content, SHA-256 by
// default or BLAKE3 on request. Files are streamed through the digest in
// fixed-size chunks, so memory use is bounded by the buffer size regardless
// of how large the file is.
//
// Basic usage:
//
//	fp := fingerprint.New()
//	sum, err := fp.Fingerprint("/path/to/file")
//	if errors.Is(err, fingerprint.ErrNotFound) {
//	    // the file went away between traversal and hashing
//	}
package fingerprint

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"lukechampine.com/blake3"
)

// DefaultBufferSize is the read chunk size used when none is configured.
const DefaultBufferSize = 1 << 20

// minBufferSize is the smallest buffer accepted by WithBufferSize.
const minBufferSize = 4096

var (
	// ErrNotFound indicates the path did not exist when hashing started.
	ErrNotFound = errors.New("file not found")

	// ErrRead indicates an I/O failure while opening or streaming the file.
	ErrRead = errors.New("read error")

	// ErrUnknownAlgorithm is returned by ParseAlgorithm for unsupported names.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

// Algorithm names a digest with a 256-bit output.
type Algorithm string

// Supported algorithms.
const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// DefaultAlgorithm is used when none is configured.
const DefaultAlgorithm = SHA256

// ParseAlgorithm parses an algorithm name, case-insensitively.
// The empty string selects DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return DefaultAlgorithm, nil
	case SHA256, BLAKE3:
		return a, nil
	default:
		return DefaultAlgorithm, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, s)
	}
}

// newHash returns a fresh digest for a.
func (a Algorithm) newHash() hash.Hash {
	if a == BLAKE3 {
		return blake3.New(types.FingerprintSize, nil)
	}
	return sha256.New()
}

// Fingerprinter streams files through a 256-bit digest.
// It is safe for concurrent use; read buffers are pooled.
type Fingerprinter struct {
	algorithm  Algorithm
	bufferSize int
	buffers    sync.Pool
}

// Option is a functional option for configuring a Fingerprinter.
type Option func(*Fingerprinter)

// WithBufferSize sets the read chunk size in bytes.
// Values below 4 KiB are raised to 4 KiB.
func WithBufferSize(size int) Option {
	return func(f *Fingerprinter) {
		if size < minBufferSize {
			size = minBufferSize
		}
		f.bufferSize = size
	}
}

// WithAlgorithm selects the digest. Unknown values fall back to SHA-256;
// validate names with ParseAlgorithm first.
func WithAlgorithm(a Algorithm) Option {
	return func(f *Fingerprinter) {
		if a == BLAKE3 {
			f.algorithm = BLAKE3
			return
		}
		f.algorithm = SHA256
	}
}

// New creates a Fingerprinter with the given options.
func New(opts ...Option) *Fingerprinter {
	f := &Fingerprinter{
		algorithm:  DefaultAlgorithm,
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(f)
	}

	size := f.bufferSize
	f.buffers.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return f
}

// Algorithm returns the configured digest.
func (f *Fingerprinter) Algorithm() Algorithm {
	return f.algorithm
}

// BufferSize returns the configured read chunk size.
func (f *Fingerprinter) BufferSize() int {
	return f.bufferSize
}

// Fingerprint returns the digest of the file at path.
// The returned error wraps ErrNotFound if the path does not exist, or ErrRead
// on any other failure to open or read it.
func (f *Fingerprinter) Fingerprint(path string) (types.Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.Fingerprint{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return types.Fingerprint{}, fmt.Errorf("%w: opening %s: %w", ErrRead, path, err)
	}
	defer file.Close()

	sum, err := f.Sum(file)
	if err != nil {
		return types.Fingerprint{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return sum, nil
}

// Sum returns the digest of everything read from r.
func (f *Fingerprinter) Sum(r io.Reader) (types.Fingerprint, error) {
	bufp, _ := f.buffers.Get().(*[]byte)
	defer f.buffers.Put(bufp)
	buf := *bufp

	hasher := f.algorithm.newHash()
	for {
		n, err := r.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.Fingerprint{}, err
		}
	}

	var sum types.Fingerprint
	copy(sum[:], hasher.Sum(nil))
	return sum, nil
}
