package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/config"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/filter"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/fingerprint"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/logging"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/report"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/scanner"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runScan is the main scan command handler.
func runScan(cmd *cobra.Command, args []string) (err error) {
	opts, err := buildScanOptions(args)
	if err != nil {
		return err
	}

	format := viper.GetString("format")
	if format == "" {
		format = report.DefaultFormat
	}

	out := cmd.OutOrStdout()
	if path := viper.GetString("output"); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return err
		}
		f, err := os.Create(expanded)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		out = f
	}

	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := executeScan(ctx, out, format, opts)
	if errors.Is(err, context.Canceled) {
		return errors.New("scan interrupted")
	}
	if err != nil {
		return err
	}

	// The summary is for people watching a terminal, never for pipelines.
	if !getQuiet() && isatty.IsTerminal(os.Stderr.Fd()) {
		printSummary(cmd.ErrOrStderr(), result)
	}
	return nil
}

// printSummary writes a one-line scan summary.
func printSummary(w io.Writer, result *types.ScanResult) {
	noun := "pairs"
	if result.Duplicates == 1 {
		noun = "pair"
	}
	fmt.Fprintf(w, "%d duplicate %s among %d files (%s hashed) in %s\n",
		result.Duplicates, noun, result.FilesHashed,
		types.FormatSize(result.BytesHashed), result.Elapsed.Round(time.Millisecond))
}

// buildScanOptions creates scanner options from the arguments, flags and
// config. The directory argument wins over default_path.
func buildScanOptions(args []string) (scanner.Options, error) {
	opts := scanner.DefaultOptions()

	root := viper.GetString("default_path")
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		root = config.DefaultPath
	}
	expanded, err := config.ExpandPath(root)
	if err != nil {
		return opts, fmt.Errorf("failed to expand path: %w", err)
	}
	opts.Root = expanded

	opts.Extensions = viper.GetStringSlice("extensions")
	opts.Exclude = viper.GetStringSlice("exclude")
	if err := filter.ValidatePatterns(opts.Exclude...); err != nil {
		return opts, err
	}

	if workers := viper.GetInt("workers"); workers > 0 {
		opts.Workers = workers
	}

	if sizeStr := viper.GetString("buffer_size"); sizeStr != "" {
		size, err := types.ParseSize(sizeStr)
		if err != nil {
			return opts, fmt.Errorf("invalid buffer size %q: %w", sizeStr, err)
		}
		opts.BufferSize = int(size)
	}

	algorithm, err := fingerprint.ParseAlgorithm(viper.GetString("hash"))
	if err != nil {
		return opts, err
	}
	opts.Algorithm = algorithm

	opts.Logger = logging.Get("scanner")
	return opts, nil
}

// executeScan runs one scan writing the report in format to w.
// Output is buffered and flushed even when the scan fails part way.
func executeScan(ctx context.Context, w io.Writer, format string, opts scanner.Options) (*types.ScanResult, error) {
	buf := bufio.NewWriter(w)

	sink, err := report.Get(format, buf)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", format, report.Available())
	}
	opts.Sink = sink

	result, scanErr := scanner.New(opts).Scan(ctx)
	if err := buf.Flush(); err != nil && scanErr == nil {
		scanErr = fmt.Errorf("writing report: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	return result, nil
}
