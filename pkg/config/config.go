// Package config loads and validates callwire's static configuration:
// logging, the codec's compatibility knobs, the rate limiter, metrics,
// and the dispatch worker pool.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (CALLWIRE_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// Environment variables override only keys that the configuration file
// sets. When no configuration file is found, Load returns the defaults
// and reads no environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is callwire's static configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Codec controls structured-decode compatibility knobs (§9 Open
	// Question a) and the default checksum type used when encoding.
	Codec CodecConfig `mapstructure:"codec" yaml:"codec"`

	// RateLimit configures the per-(caller,callee) token-bucket
	// collaborator.
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Dispatch controls the frame-processing worker pool.
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// CodecConfig controls the structured decoder/encoder's compatibility
// behavior and the checksum type used when none is specified explicitly.
type CodecConfig struct {
	// AllowInvalidUTF8 forwards a malformed service name as raw bytes
	// instead of rejecting the frame (§9 Open Question a).
	AllowInvalidUTF8 bool `mapstructure:"allow_invalid_utf8" yaml:"allow_invalid_utf8"`

	// DefaultChecksumType names the checksum type new outbound frames use
	// when the caller doesn't set one explicitly: none, crc32, farmhash,
	// crc32c.
	DefaultChecksumType string `mapstructure:"default_checksum_type" validate:"omitempty,oneof=none crc32 farmhash crc32c" yaml:"default_checksum_type"`
}

// RateLimitConfig configures the ristretto-backed admission cache behind
// the rate-limiting collaborator (§6, §9).
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// MaxTokensPerWindow is the number of calls a single (caller, callee)
	// pair may make within ResetInterval before being throttled.
	MaxTokensPerWindow int64 `mapstructure:"max_tokens_per_window" validate:"omitempty,gt=0" yaml:"max_tokens_per_window"`

	// ResetInterval is how often the token count resets.
	ResetInterval time.Duration `mapstructure:"reset_interval" validate:"omitempty,gt=0" yaml:"reset_interval"`

	// NumCounters sizes ristretto's internal admission-count structures
	// (a hint at expected cardinality of distinct (caller,callee) pairs).
	NumCounters int64 `mapstructure:"num_counters" validate:"omitempty,gt=0" yaml:"num_counters"`

	// MaxCost bounds the cache's tracked-entry budget.
	MaxCost int64 `mapstructure:"max_cost" validate:"omitempty,gt=0" yaml:"max_cost"`
}

// MetricsConfig controls the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" validate:"omitempty,hostname_port" yaml:"addr"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// DispatchConfig controls the frame-processing worker pool (§5).
type DispatchConfig struct {
	// Workers is the number of concurrent frame-processing goroutines.
	Workers int `mapstructure:"workers" validate:"omitempty,gt=0" yaml:"workers"`

	// QueueDepth bounds how many frames may be buffered awaiting a free
	// worker before Submit blocks.
	QueueDepth int `mapstructure:"queue_depth" validate:"omitempty,gt=0" yaml:"queue_depth"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// WatchReload loads the configuration at configPath and invokes onChange
// with every subsequently reloaded, defaulted, and validated Config
// whenever the underlying file changes on disk. Invalid reloads are
// dropped (onChange is not called) so a typo in a running config file
// cannot take the process down (§10 AMBIENT STACK).
func WatchReload(configPath string, onChange func(*Config)) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var reloaded Config
		if err := v.Unmarshal(&reloaded, viper.DecodeHook(configDecodeHooks())); err != nil {
			return
		}
		ApplyDefaults(&reloaded)
		if err := Validate(&reloaded); err != nil {
			return
		}
		onChange(&reloaded)
	})
	v.WatchConfig()

	return &cfg, nil
}

// Validate runs struct-tag validation over cfg via go-playground/validator.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

// SaveConfig saves the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("CALLWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks normalizes a checksum type string (e.g. "CRC32",
// "Crc32C") to the lowercase form CodecConfig.DefaultChecksumType's
// validation tag expects, before struct-tag validation runs.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		lowercaseChecksumTypeHook(),
	)
}

func lowercaseChecksumTypeHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		switch lower := strings.ToLower(s); lower {
		case "none", "crc32", "farmhash", "crc32c":
			return lower, nil
		}
		return data, nil
	}
}

func getConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "callwire")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "callwire")
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
