// Package identity resolves the filesystem identity (device id and inode
// number) of a path. Two paths with the same identity name one physical file,
// such as hard links or a symlink and its target.
package identity

import (
	"errors"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
)

// ErrMetadata indicates the file's metadata could not be read.
var ErrMetadata = errors.New("cannot read file metadata")

// Resolve returns the identity of the file at path, following symlinks.
// The returned error wraps ErrMetadata.
func Resolve(path string) (types.Identity, error) {
	return resolve(path)
}

// Same reports whether a and b resolve to the same file object.
func Same(a, b string) (bool, error) {
	ia, err := Resolve(a)
	if err != nil {
		return false, err
	}
	ib, err := Resolve(b)
	if err != nil {
		return false, err
	}
	return ia == ib, nil
}
