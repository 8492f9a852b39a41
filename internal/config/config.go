package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Config is the top-level ecksnap configuration.
type Config struct {
	OutputDir     string  `mapstructure:"output_dir"`
	Format        string  `mapstructure:"format"`
	Compress      bool    `mapstructure:"compress"`
	Workers       int     `mapstructure:"workers"`
	MaxFileSize   string  `mapstructure:"max_file_size"`
	MaxTotalSize  string  `mapstructure:"max_total_size"`
	IncludeHidden bool    `mapstructure:"include_hidden"`
	Tree          bool    `mapstructure:"tree"`
	UseGit        bool    `mapstructure:"use_git"`
	Ignore        Ignore  `mapstructure:"ignore"`
	Restore       Restore `mapstructure:"restore"`
	Watch         Watch   `mapstructure:"watch"`
}

// Ignore lists the built-in exclusion rules.
type Ignore struct {
	Directories []string `mapstructure:"directories"`
	Extensions  []string `mapstructure:"extensions"`
	Patterns    []string `mapstructure:"patterns"`
}

// Restore holds restore-side settings.
type Restore struct {
	Workers int `mapstructure:"workers"`
}

// Watch holds watch-mode settings.
type Watch struct {
	Interval string `mapstructure:"interval"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("compress", false)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("max_file_size", DefaultMaxFileSize)
	v.SetDefault("max_total_size", DefaultMaxTotalSize)
	v.SetDefault("include_hidden", false)
	v.SetDefault("tree", true)
	v.SetDefault("use_git", true)
	v.SetDefault("ignore.directories", DefaultIgnoreDirectories)
	v.SetDefault("ignore.extensions", DefaultIgnoreExtensions)
	v.SetDefault("ignore.patterns", DefaultIgnorePatterns)
	v.SetDefault("restore.workers", DefaultRestoreWorkers)
	v.SetDefault("watch.interval", DefaultWatchInterval)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.OutputDir = expandPath(cfg.OutputDir)
	return &cfg, nil
}

// FileBudget parses the per-file size limit. Size literals accept both
// SI and binary units ("1 MB", "512 KiB").
func (c *Config) FileBudget() (int64, error) {
	return parseSize(c.MaxFileSize, "max_file_size")
}

// TotalBudget parses the whole-snapshot size limit.
func (c *Config) TotalBudget() (int64, error) {
	return parseSize(c.MaxTotalSize, "max_total_size")
}

func parseSize(s, key string) (int64, error) {
	if strings.TrimSpace(s) == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return int64(n), nil
}

// WatchInterval parses the watch polling interval.
func (c *Config) WatchInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.interval %q: %w", c.Watch.Interval, err)
	}
	return d, nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
