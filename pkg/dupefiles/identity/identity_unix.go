//go:build unix

package identity

import (
	"fmt"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"golang.org/x/sys/unix"
)

// Supported reports whether Resolve can read file identities on this platform.
const Supported = true

func resolve(path string) (types.Identity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return types.Identity{}, fmt.Errorf("%w: %s: %w", ErrMetadata, path, err)
	}
	return types.Identity{
		Dev: uint64(st.Dev), //nolint:unconvert // int32 on darwin
		Ino: uint64(st.Ino), //nolint:unconvert // uint32 on some BSDs
	}, nil
}
