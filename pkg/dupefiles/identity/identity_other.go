//go:build !unix

package identity

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
)

// Supported reports whether Resolve can read file identities on this platform.
const Supported = false

// resolve has no portable device/inode source outside Unix.
func resolve(path string) (types.Identity, error) {
	return types.Identity{}, fmt.Errorf("%w: %s: %w", ErrMetadata, path, errors.ErrUnsupported)
}
