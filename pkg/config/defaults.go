package config

import (
	"strings"
	"time"
)

// GetDefaultConfig returns a Config populated entirely with defaults,
// used when no config file is found.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills any zero-valued fields of cfg with defaults.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyCodecDefaults(&cfg.Codec)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyMetricsDefaults(&cfg.Metrics)
	applyDispatchDefaults(&cfg.Dispatch)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyCodecDefaults(cfg *CodecConfig) {
	if cfg.DefaultChecksumType == "" {
		cfg.DefaultChecksumType = "crc32"
	}
}

func applyRateLimitDefaults(cfg *RateLimitConfig) {
	if cfg.MaxTokensPerWindow == 0 {
		cfg.MaxTokensPerWindow = 1000
	}
	if cfg.ResetInterval == 0 {
		cfg.ResetInterval = time.Second
	}
	if cfg.NumCounters == 0 {
		cfg.NumCounters = 1e6
	}
	if cfg.MaxCost == 0 {
		cfg.MaxCost = 1 << 24
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:9090"
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
}

func applyDispatchDefaults(cfg *DispatchConfig) {
	if cfg.Workers == 0 {
		cfg.Workers = 8
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = 256
	}
}
