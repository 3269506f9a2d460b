package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/config"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/filter"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/fingerprint"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/logging"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/report"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/scanner"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViperForTest(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestBuildScanOptions(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		args        []string
		wantRoot    string
		wantExt     []string
		wantWorkers int
		wantBuffer  int
		wantErr     bool
	}{
		{
			name:       "defaults",
			setup:      func() {},
			wantRoot:   ".",
			wantBuffer: fingerprint.DefaultBufferSize,
		},
		{
			name:       "argument wins over default_path",
			setup:      func() { viper.Set("default_path", "/configured") },
			args:       []string{"/from/args"},
			wantRoot:   "/from/args",
			wantBuffer: fingerprint.DefaultBufferSize,
		},
		{
			name:       "default_path used without argument",
			setup:      func() { viper.Set("default_path", "/configured") },
			wantRoot:   "/configured",
			wantBuffer: fingerprint.DefaultBufferSize,
		},
		{
			name: "extensions workers and buffer",
			setup: func() {
				viper.Set("extensions", []string{"jpg", "png"})
				viper.Set("workers", 3)
				viper.Set("buffer_size", "64K")
			},
			wantRoot:    ".",
			wantExt:     []string{"jpg", "png"},
			wantWorkers: 3,
			wantBuffer:  64 * 1024,
		},
		{
			name:       "unknown hash",
			setup:      func() { viper.Set("hash", "md5") },
			wantErr:    true,
			wantBuffer: fingerprint.DefaultBufferSize,
		},
		{
			name:    "invalid buffer size",
			setup:   func() { viper.Set("buffer_size", "huge") },
			wantErr: true,
		},
		{
			name:    "invalid exclude pattern",
			setup:   func() { viper.Set("exclude", []string{"*.tmp", "[oops"}) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViperForTest(t)
			tt.setup()

			opts, err := buildScanOptions(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantRoot, opts.Root)
			assert.Equal(t, tt.wantBuffer, opts.BufferSize)
			if tt.wantExt != nil {
				assert.Equal(t, tt.wantExt, opts.Extensions)
			} else {
				assert.Empty(t, opts.Extensions)
			}
			if tt.wantWorkers > 0 {
				assert.Equal(t, tt.wantWorkers, opts.Workers)
			} else {
				assert.Positive(t, opts.Workers)
			}
			assert.NotNil(t, opts.Logger)
		})
	}
}

func TestBuildScanOptions_InvalidExcludeNamesPattern(t *testing.T) {
	resetViperForTest(t)
	viper.Set("exclude", []string{"[oops"})

	_, err := buildScanOptions(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, filter.ErrInvalidPattern))
	assert.Contains(t, err.Error(), `"[oops"`)
}

func TestBuildScanOptions_ExpandsHome(t *testing.T) {
	resetViperForTest(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	opts, err := buildScanOptions([]string{"~/photos"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "photos"), opts.Root)
}

func TestConsoleLevel(t *testing.T) {
	resetViperForTest(t)
	assert.Equal(t, "warn", consoleLevel())

	viper.Set("verbose", true)
	assert.Equal(t, "debug", consoleLevel())

	viper.Set("quiet", true)
	assert.Equal(t, "error", consoleLevel())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExecuteScan_CSV(t *testing.T) {
	dir := t.TempDir()
	x := writeFile(t, dir, "x.txt", "hello")
	y := writeFile(t, dir, "y.txt", "hello")
	writeFile(t, dir, "z.txt", "world")

	var out bytes.Buffer
	result, err := executeScan(context.Background(), &out, "csv", scanner.Options{
		Root:   dir,
		Logger: logging.Discard(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Duplicates)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, report.CSVHeader, lines[0])
	assert.Contains(t, lines[1], `"5 B"`)
	assert.True(t, strings.Contains(lines[1], x) && strings.Contains(lines[1], y))
}

func TestExecuteScan_NoDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a", "one")
	writeFile(t, dir, "b", "two")

	var out bytes.Buffer
	_, err := executeScan(context.Background(), &out, "csv", scanner.Options{
		Root:   dir,
		Logger: logging.Discard(),
	})
	require.NoError(t, err)
	assert.Equal(t, "No duplicate files found.\n", out.String())
}

func TestExecuteScan_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a", "same")
	writeFile(t, dir, "b", "same")

	var out bytes.Buffer
	_, err := executeScan(context.Background(), &out, "json", scanner.Options{
		Root:   dir,
		Logger: logging.Discard(),
	})
	require.NoError(t, err)

	var doc struct {
		Count int               `json:"count"`
		Pairs []json.RawMessage `json:"pairs"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, 1, doc.Count)
	assert.Len(t, doc.Pairs, 1)
}

func TestExecuteScan_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := executeScan(context.Background(), &bytes.Buffer{}, "xml", scanner.Options{
		Root:   dir,
		Logger: logging.Discard(),
	})
	assert.ErrorContains(t, err, "unknown output format")

	var out bytes.Buffer
	_, err = executeScan(context.Background(), &out, "csv", scanner.Options{
		Root:   filepath.Join(dir, "missing"),
		Logger: logging.Discard(),
	})
	assert.ErrorIs(t, err, scanner.ErrRootNotFound)
	assert.Empty(t, out.String())
}

func TestBuildScanOptions_Hash(t *testing.T) {
	resetViperForTest(t)
	viper.Set("hash", "BLAKE3")

	opts, err := buildScanOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.BLAKE3, opts.Algorithm)
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, &types.ScanResult{
		Duplicates:  1,
		FilesHashed: 3,
		BytesHashed: 2048,
		Elapsed:     1500 * time.Millisecond,
	})
	assert.Equal(t, "1 duplicate pair among 3 files (2.0 KiB hashed) in 1.5s\n", out.String())
}

func TestWriteConfig(t *testing.T) {
	cfg := &config.Config{
		DefaultPath: ".",
		Extensions:  []string{"jpg"},
		Workers:     4,
		BufferSize:  "1MiB",
		Format:      "csv",
		Logging:     config.LoggingConfig{Level: "info"},
	}

	var out bytes.Buffer
	err := writeConfig(&out, cfg, "", []string{"HOME=/root", "DUPEFILES_WORKERS=4"})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "no file found")
	assert.Contains(t, s, "buffer_size: 1MiB")
	assert.Contains(t, s, "- jpg")
	assert.Contains(t, s, "DUPEFILES_WORKERS=4")
	assert.NotContains(t, s, "HOME=/root")
}
