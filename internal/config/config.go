// Package config loads tododos configuration.
//
// Settings come from $TODODOS_DIR/config.yaml, overridable with
// TODODOS_* environment variables (TODODOS_BACKEND=file, for example).
// A missing config file is fine; every setting has a default.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Backend names accepted for the "backend" setting.
const (
	// BackendSQLite selects the SQLite document store.
	BackendSQLite = "sqlite"
	// BackendFile selects the single-file JSON fallback.
	BackendFile = "file"
)

// Config holds all runtime settings.
type Config struct {
	// DataDir is where the database, fallback file, changelog and
	// preferences live. Default: ~/.tododos.
	DataDir string `mapstructure:"data_dir"`

	// Backend selects the persistence gateway: "sqlite" or "file".
	Backend string `mapstructure:"backend"`

	// PushAddr, when set, is the host:port of a running push hub;
	// the sqlite backend subscribes through it instead of watching
	// the data directory.
	PushAddr string `mapstructure:"push_addr"`

	// PushPort is the port the serve command listens on.
	PushPort int `mapstructure:"push_port"`

	// LogFile, when set, routes diagnostics to a rotating log file
	// instead of stderr.
	LogFile string `mapstructure:"log_file"`
}

// Load reads configuration, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	defaultDir := filepath.Join(home, ".tododos")
	if dir := os.Getenv("TODODOS_DIR"); dir != "" {
		defaultDir = dir
	}

	v.SetDefault("data_dir", defaultDir)
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("push_addr", "")
	v.SetDefault("push_port", 8377)
	v.SetDefault("log_file", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultDir)
	v.SetEnvPrefix("TODODOS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Backend != BackendSQLite && cfg.Backend != BackendFile {
		return nil, fmt.Errorf("unknown backend %q (want %q or %q)",
			cfg.Backend, BackendSQLite, BackendFile)
	}

	return &cfg, nil
}

// DBPath returns the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "lists.db")
}

// FilePath returns the JSON fallback file location.
func (c *Config) FilePath() string {
	return filepath.Join(c.DataDir, "lists.json")
}

// Logger builds the diagnostics logger. With LogFile set it writes to
// a rotating file; otherwise to stderr.
func (c *Config) Logger(prefix string) *log.Logger {
	var w io.Writer = os.Stderr
	if c.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return log.New(w, prefix, log.LstdFlags)
}
