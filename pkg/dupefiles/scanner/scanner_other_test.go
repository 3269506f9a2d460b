//go:build !unix

package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/logging"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_UnsupportedPlatformFailsFast(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("hello"), 0o644))

	sink := &report.Collector{}
	_, err := New(Options{Root: dir, Sink: sink, Logger: logging.Discard()}).Scan(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))
	assert.False(t, sink.Finished)
	assert.Empty(t, sink.Pairs)
}
