package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/config"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// cfgErr holds a config read failure until a command runs.
	cfgErr error

	rootCmd = &cobra.Command{
		Use:   "dupefiles [directory]",
		Short: "Find duplicate files",
		Long: `dupefiles walks a directory tree and reports pairs of regular files
with identical content.

Hidden files and directories, empty files, broken symlinks and hard links to
the same file are skipped. Results are written as CSV by default.

Telling hard links apart from copies needs device and inode numbers, so
dupefiles runs on Unix-like systems (Linux, macOS, the BSDs) only.

Examples:
  dupefiles                       # Scan the current directory
  dupefiles ~/Pictures -e jpg,png # Only consider .jpg and .png files
  dupefiles -o dupes.csv /data    # Write the report to a file
  dupefiles -f json /data         # JSON report
  dupefiles config show           # Show configuration`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initLogging,
		RunE:              runScan,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/dupefiles/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	rootCmd.Flags().StringSliceP("ext", "e", nil, "only consider these extensions (repeatable or comma separated)")
	rootCmd.Flags().StringSliceP("exclude", "x", nil, "exclude glob patterns (can be specified multiple times)")
	rootCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	rootCmd.Flags().StringP("format", "f", "", "report format: csv, json, yaml")
	rootCmd.Flags().IntP("workers", "w", 0, "fingerprint workers (0=one per CPU)")
	rootCmd.Flags().String("buffer-size", "", "hash read buffer size (e.g., 1MiB, 64K)")
	rootCmd.Flags().String("hash", "", "fingerprint algorithm: sha256, blake3")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("extensions", rootCmd.Flags().Lookup("ext"))
	_ = viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("buffer_size", rootCmd.Flags().Lookup("buffer-size"))
	_ = viper.BindPFlag("hash", rootCmd.Flags().Lookup("hash"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	cfgErr = config.Setup(viper.GetViper(), cfgFile)
}

// initLogging configures stderr logging from the flags and the logging
// section of the config.
func initLogging(_ *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}

	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return err
	}

	if err := logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		ConsoleLevel: consoleLevel(),
		Components:   cfg.Logging.Components,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	return nil
}

// consoleLevel maps --verbose and --quiet to the stderr log level.
// Warnings are shown by default since they report skipped files.
func consoleLevel() string {
	switch {
	case getQuiet():
		return logging.LevelError.String()
	case getVerbose():
		return logging.LevelDebug.String()
	default:
		return logging.LevelWarn.String()
	}
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
