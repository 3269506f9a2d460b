package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Components map[string]string `mapstructure:"components" yaml:"components,omitempty"`
}

// Config represents the application configuration.
type Config struct {
	DefaultPath string        `mapstructure:"default_path" yaml:"default_path"`
	Extensions  []string      `mapstructure:"extensions" yaml:"extensions"`
	Exclude     []string      `mapstructure:"exclude" yaml:"exclude"`
	Workers     int           `mapstructure:"workers" yaml:"workers"`
	BufferSize  string        `mapstructure:"buffer_size" yaml:"buffer_size"`
	Hash        string        `mapstructure:"hash" yaml:"hash"`
	Format      string        `mapstructure:"format" yaml:"format"`
	Logging     LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// BufferBytes parses BufferSize ("1MiB", "64K") into bytes.
func (c *Config) BufferBytes() (int, error) {
	n, err := types.ParseSize(c.BufferSize)
	if err != nil {
		return 0, fmt.Errorf("buffer_size: %w", err)
	}
	return int(n), nil
}

// Setup prepares v with defaults, config search paths and environment
// binding, then reads the config file. A missing file is not an error;
// an explicitly named file that cannot be read is.
//
// Config file locations (in order of precedence):
//   - cfgFile, when non-empty
//   - $XDG_CONFIG_HOME/dupefiles/config.yaml
//   - $HOME/.config/dupefiles/config.yaml
//
// Environment variables are prefixed with DUPEFILES_ (e.g., DUPEFILES_WORKERS).
func Setup(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, AppName))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("extensions", []string{})
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("buffer_size", DefaultBufferSize)
	v.SetDefault("hash", DefaultHash)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty disables the log file
	v.SetDefault("logging.components", map[string]string{})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// Decode unmarshals the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	path, err := ExpandPath(cfg.DefaultPath)
	if err != nil {
		return nil, err
	}
	cfg.DefaultPath = path

	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load loads configuration from the default file locations and
// environment variables.
func Load() (*Config, error) {
	v := viper.New()
	if err := Setup(v, ""); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/dupefiles/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# dupefiles configuration

# Default directory to scan when none is specified
default_path: %s

# Only consider files with these extensions (case-insensitive).
# Empty means every file is considered.
extensions: []

# Glob patterns for files and directories to skip.
# Hidden entries (names starting with ".") are always skipped.
exclude: []

# Concurrent fingerprint workers (0 = one per CPU)
workers: %d

# Read chunk size used while hashing
buffer_size: %s

# Fingerprint algorithm: sha256, blake3
hash: %s

# Report format: csv, json, yaml
format: %s

# Logging configuration
logging:
  # Log file level: debug, info, warn, error
  level: %s
  # Log file path (empty disables the log file,
  # suggested: %s)
  path: ""
  # Per-component log levels
  components: {}
`, DefaultPath, DefaultWorkers, DefaultBufferSize, DefaultHash, DefaultFormat, DefaultLogLevel,
		filepath.Join(StateDir(), AppName+".log"))

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
