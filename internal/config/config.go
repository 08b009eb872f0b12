// Package config provides configuration management for the muxer core
// using Viper: grouped mapstructure-tagged sub-configs, package-level
// defaultX constants, and a Load that layers defaults, an optional
// file, and environment variables. CLI flag parsing stays out of scope
// (spec.md §1); this is the layer a CLI populates, not the CLI itself.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/acdvorak/mkvtoolnix/internal/merrors"
)

// Default configuration values.
const (
	defaultLogLevel   = "info"
	defaultLogFormat  = "json"
	defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"
	defaultCharset    = "UTF-8"
)

// Config holds all configuration for one mkvmerge run.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Muxer   MuxerConfig   `mapstructure:"muxer"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// MuxerConfig covers the process-wide knobs spec.md mentions only in
// passing.
type MuxerConfig struct {
	// DropNVOPs skips emission of MPEG-4 Part 2 not-coded dummy frames
	// (spec §4.3 "NVOP handling"). Default: keep (false).
	DropNVOPs bool `mapstructure:"drop_nvops"`
	// TrackOrder is a user-supplied track emission order, as indices
	// into registration order (spec §4.5 "Track ordering"). Empty means
	// registration order.
	TrackOrder []int `mapstructure:"track_order"`
	// Charset names the legacy 8-bit charset the RuntimeContext's
	// CharsetTable decodes from (spec §5, §9 "Global state" — the
	// iconv-style charset table). No TrackInfo field is passed through
	// that table by this module's own code.
	Charset string `mapstructure:"charset"`
}

// Validate reports any configuration error as merrors.InvalidConfig.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return merrors.New(merrors.InvalidConfig, "config: invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return merrors.New(merrors.InvalidConfig, "config: invalid logging.format %q", c.Logging.Format)
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration and
// are prefixed with MKVMERGE_, using underscores for nesting (e.g.
// MKVMERGE_MUXER_DROP_NVOPS=true).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/mkvmerge")
		v.AddConfigPath("$HOME/.mkvmerge")
	}

	v.SetEnvPrefix("MKVMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values, called before reading the
// config file so defaults are in place underneath it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.format", defaultLogFormat)
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", defaultTimeFormat)

	v.SetDefault("muxer.drop_nvops", false)
	v.SetDefault("muxer.track_order", []int{})
	v.SetDefault("muxer.charset", defaultCharset)
}
