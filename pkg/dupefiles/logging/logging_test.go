package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{input: "debug", want: logging.LevelDebug},
		{input: "INFO", want: logging.LevelInfo},
		{input: "warn", want: logging.LevelWarn},
		{input: "warning", want: logging.LevelWarn},
		{input: " error ", want: logging.LevelError},
		{input: "verbose", want: logging.LevelInfo, wantErr: true},
		{input: "", want: logging.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.True(t, errors.Is(err, logging.ErrInvalidLevel))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "debug", logging.LevelDebug.String())
	assert.Equal(t, "warn", logging.LevelWarn.String())
	assert.Equal(t, "unknown", logging.Level(17).String())
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.LevelWarn, "scanner")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("skipping broken symlink", "path", "/data/dangling")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "skipping broken symlink")
	assert.Contains(t, out, "/data/dangling")

	assert.False(t, logger.Enabled(logging.LevelDebug))
	assert.True(t, logger.Enabled(logging.LevelError))
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.LevelInfo, "scanner").With("scan_id", "abc123")
	logger.Info("scan started")

	assert.Contains(t, buf.String(), "abc123")
}

func TestDiscard(t *testing.T) {
	logger := logging.Discard()
	logger.Error("nothing happens")
	assert.False(t, logger.Enabled(logging.LevelError))
}

// TestInit exercises the global state. It must not run in parallel.
func TestInit(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "dupefiles.log")
	var console bytes.Buffer

	// A logger obtained before Init is silent and is upgraded in place.
	early := logging.Get("verify")
	early.Error("before init")

	err := logging.Init(logging.Config{
		Level:        "debug",
		Path:         logPath,
		ConsoleLevel: "warn",
		Console:      &console,
		Components:   map[string]string{"verify": "error"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = logging.Close() })

	scanner := logging.Get("scanner")
	assert.Same(t, scanner, logging.Get("scanner"))

	scanner.Debug("hashing file", "path", "/data/a.txt")
	scanner.Warn("hash failed", "path", "/data/b.txt")
	early.Info("filtered by component level")

	require.NoError(t, logging.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hashing file")
	assert.Contains(t, string(data), "hash failed")
	assert.NotContains(t, string(data), "before init")
	assert.NotContains(t, string(data), "filtered by component level")

	assert.Contains(t, console.String(), "hash failed")
	assert.NotContains(t, console.String(), "hashing file")
}

func TestInit_InvalidLevels(t *testing.T) {
	tests := []struct {
		name string
		cfg  logging.Config
	}{
		{name: "default level", cfg: logging.Config{Level: "loud"}},
		{name: "console level", cfg: logging.Config{Level: "info", ConsoleLevel: "loud"}},
		{name: "component level", cfg: logging.Config{Level: "info", Components: map[string]string{"scanner": "loud"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logging.Init(tt.cfg)
			assert.True(t, errors.Is(err, logging.ErrInvalidLevel))
			_ = logging.Close()
		})
	}
}

func TestDefaultLogPath(t *testing.T) {
	assert.Equal(t, "dupefiles.log", filepath.Base(logging.DefaultLogPath()))
}
