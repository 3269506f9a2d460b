// Package index holds the candidate index of a scan: a mapping from content
// fingerprint to the first path seen with that fingerprint.
//
// The index never stores two paths under one key. A second arrival at an
// existing key is routed to verification by the caller, not inserted.
package index

import (
	"sync"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
)

// Index maps fingerprints to their first-seen path. It only grows.
// It is safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	entries map[types.Fingerprint]string
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		entries: make(map[types.Fingerprint]string),
	}
}

// Lookup returns the path stored under fp, if any.
func (i *Index) Lookup(fp types.Fingerprint) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	path, ok := i.entries[fp]
	return path, ok
}

// Insert stores path under fp. It returns false and leaves the index
// unchanged if fp is already present.
func (i *Index) Insert(fp types.Fingerprint, path string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.entries[fp]; ok {
		return false
	}
	i.entries[fp] = path
	return true
}

// LoadOrStore returns the existing path for fp and true if present.
// Otherwise it stores path and returns it with false. The check and the
// insert happen under one lock.
func (i *Index) LoadOrStore(fp types.Fingerprint, path string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if existing, ok := i.entries[fp]; ok {
		return existing, true
	}
	i.entries[fp] = path
	return path, false
}

// Len returns the number of distinct fingerprints indexed.
func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}
