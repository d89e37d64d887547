// Package config loads regionplot configuration.
//
// Sources, highest precedence first:
//  1. CLI flags
//  2. Environment variables (REGIONPLOT_ prefix, dashes become underscores)
//  3. Config file (--config, or .regionplot.yaml auto-discovered)
//  4. Defaults
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/regionplot/internal/render"
	"github.com/roach88/regionplot/internal/selection"
	"github.com/roach88/regionplot/internal/table"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "REGIONPLOT"

// Config is the resolved configuration.
type Config struct {
	LogLevel  string `mapstructure:"log-level" json:"logLevel"`
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// Verbose forces debug logging.
	Verbose bool `mapstructure:"verbose" json:"verbose"`

	HTTPAddr string `mapstructure:"http-addr" json:"httpAddr"`

	// Dataset is a .yaml, .json or .cue table. Empty selects the embedded
	// WorldPhones table.
	Dataset string `mapstructure:"dataset" json:"dataset"`

	// Role names; empty means the table's row, column and measure names.
	Primary   string `mapstructure:"primary" json:"primary"`
	Secondary string `mapstructure:"secondary" json:"secondary"`
	Value     string `mapstructure:"value" json:"value"`

	Watch         bool          `mapstructure:"watch" json:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch-debounce" json:"watchDebounce"`

	// DB is the SQLite event log path. Empty disables the event log.
	DB string `mapstructure:"db" json:"db"`

	MaxHops int `mapstructure:"max-hops" json:"maxHops"`

	ChartTitle   string `mapstructure:"chart-title" json:"chartTitle"`
	ChartCaption string `mapstructure:"chart-caption" json:"chartCaption"`

	// ConfigFile is the config file actually read, if any.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	chart := render.DefaultOptions()
	return &Config{
		LogLevel:      LogLevelInfo,
		LogFormat:     LogFormatText,
		HTTPAddr:      ":8080",
		WatchDebounce: 500 * time.Millisecond,
		MaxHops:       selection.DefaultMaxHops,
		ChartTitle:    chart.Title,
		ChartCaption:  chart.Caption,
	}
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if c.HTTPAddr == "" {
		return errors.New("http-addr must not be empty")
	}
	if c.MaxHops < 1 {
		return fmt.Errorf("invalid max-hops %d: must be at least 1", c.MaxHops)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("invalid watch-debounce %s: must not be negative", c.WatchDebounce)
	}
	if c.Watch && c.Dataset == "" {
		return errors.New("watch requires a dataset file")
	}
	return nil
}

// EffectiveLogLevel returns debug when Verbose is set, else LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Verbose {
		return LogLevelDebug
	}
	return c.LogLevel
}

// Roles returns the configured role names.
func (c *Config) Roles() table.Roles {
	return table.Roles{Primary: c.Primary, Secondary: c.Secondary, Value: c.Value}
}

// ChartOptions returns the render options with the configured title and
// caption applied.
func (c *Config) ChartOptions() render.Options {
	o := render.DefaultOptions()
	o.Title = c.ChartTitle
	o.Caption = c.ChartCaption
	return o
}

// Load reads configuration for cmd. A fresh viper instance is used on
// every call.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("verbose", false)
	v.SetDefault("http-addr", d.HTTPAddr)
	v.SetDefault("dataset", "")
	v.SetDefault("primary", "")
	v.SetDefault("secondary", "")
	v.SetDefault("value", "")
	v.SetDefault("watch", false)
	v.SetDefault("watch-debounce", d.WatchDebounce)
	v.SetDefault("db", "")
	v.SetDefault("max-hops", d.MaxHops)
	v.SetDefault("chart-title", d.ChartTitle)
	v.SetDefault("chart-caption", d.ChartCaption)
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName(".regionplot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "regionplot"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// bindFlags binds cmd's flags and the persistent flags of every ancestor.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}
	return nil
}

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}
	return Default()
}
