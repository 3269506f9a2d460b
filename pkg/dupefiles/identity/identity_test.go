//go:build unix

package identity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported)
}

func TestResolve_HardLinkSharesIdentity(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "a.bin")
	link := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(orig, []byte("duplicate content"), 0o644))
	require.NoError(t, os.Link(orig, link))

	ia, err := Resolve(orig)
	require.NoError(t, err)
	ib, err := Resolve(link)
	require.NoError(t, err)
	assert.Equal(t, ia, ib)

	same, err := Same(orig, link)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestResolve_CopiesDiffer(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("hello"), 0o644))

	same, err := Same(a, b)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestResolve_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0o644))
	require.NoError(t, os.Symlink(target, link))

	same, err := Same(target, link)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMetadata))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
