package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix = "MEDIAINGEST_"
	appDir    = "mediaingest"
)

// Config holds runtime options. Flags bound with BindFlags override the
// environment, which overrides the defaults.
type Config struct {
	SettingsFile string        `env:"SETTINGS_FILE"`
	LogFile      string        `env:"LOG_FILE"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	Verbose      bool          `env:"VERBOSE"`
	Plain        bool          `env:"PLAIN"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, err
	}
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = DefaultSettingsFile()
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile()
	}
	return cfg, nil
}

func DefaultSettingsFile() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.json")
}

func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, appDir, "mediaingest.log")
}

// BindFlags registers the flags with the loaded values as defaults.
func (c *Config) BindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.SettingsFile, "settings", c.SettingsFile, "Settings file holding the destination folder")
	flags.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file used while the TUI owns the terminal")
	flags.DurationVar(&c.PollInterval, "interval", c.PollInterval, "Device polling interval")
	flags.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Verbose output")
	flags.BoolVar(&c.Plain, "plain", c.Plain, "Line based prompts instead of the TUI")
}

func (c Config) Validate() error {
	if c.SettingsFile == "" {
		return errors.New("settings file path is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}
