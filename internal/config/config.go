// Package config loads lattice settings from an optional YAML file and
// LATTICE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store drivers.
const (
	DriverLoam   = "loam"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	Env       string `yaml:"env" env:"LATTICE_ENV" env-default:"local"`
	LogLevel  string `yaml:"log_level" env:"LATTICE_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LATTICE_LOG_FORMAT" env-default:"text"`

	HTTP struct {
		Addr            string        `yaml:"addr" env:"LATTICE_HTTP_ADDR" env-default:":8080"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"LATTICE_HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
		CORSOrigin      string        `yaml:"cors_origin" env:"LATTICE_HTTP_CORS_ORIGIN" env-default:"*"`
	} `yaml:"http"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"LATTICE_METRICS_ENABLED" env-default:"false"`
		Addr    string `yaml:"addr" env:"LATTICE_METRICS_ADDR" env-default:":2112"`
	} `yaml:"metrics"`

	Store struct {
		Driver   string `yaml:"driver" env:"LATTICE_STORE_DRIVER" env-default:"loam"`
		Dir      string `yaml:"dir" env:"LATTICE_STORE_DIR" env-default:"."`
		BoltPath string `yaml:"bolt_path" env:"LATTICE_STORE_BOLT_PATH" env-default:"lattice.db"`
	} `yaml:"store"`

	Redis struct {
		Addr     string `yaml:"addr" env:"LATTICE_REDIS_ADDR" env-default:"localhost:6379"`
		Password string `yaml:"password" env:"LATTICE_REDIS_PASSWORD" env-default:""`
		DB       int    `yaml:"db" env:"LATTICE_REDIS_DB" env-default:"0"`
		Prefix   string `yaml:"prefix" env:"LATTICE_REDIS_PREFIX" env-default:"lattice:"`
	} `yaml:"redis"`

	Analytics struct {
		Buffer       int    `yaml:"buffer" env:"LATTICE_ANALYTICS_BUFFER" env-default:"256"`
		Stream       string `yaml:"stream" env:"LATTICE_ANALYTICS_STREAM" env-default:""`
		StreamMaxLen int64  `yaml:"stream_max_len" env:"LATTICE_ANALYTICS_STREAM_MAX_LEN" env-default:"10000"`
		Log          bool   `yaml:"log" env:"LATTICE_ANALYTICS_LOG" env-default:"false"`
	} `yaml:"analytics"`

	Sessions struct {
		TTL     time.Duration `yaml:"ttl" env:"LATTICE_SESSIONS_TTL" env-default:"30m"`
		LockTTL time.Duration `yaml:"lock_ttl" env:"LATTICE_SESSIONS_LOCK_TTL" env-default:"30s"`
		// EncryptionKey seals stored sessions with AES-256 when set (hex or base64).
		EncryptionKey string   `yaml:"encryption_key" env:"LATTICE_SESSIONS_ENCRYPTION_KEY" env-description:"AES-256 key sealing stored sessions (hex or base64)"`
		FallbackKeys  []string `yaml:"fallback_keys" env:"LATTICE_SESSIONS_FALLBACK_KEYS" env-separator:"," env-description:"Previous session keys, still accepted for reading"`
	} `yaml:"sessions"`
}

// Load reads path when it is non-empty, then applies the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config file: %w", statErr)
		}
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("%w; %s", err, desc)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverLoam, DriverBolt, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Analytics.Buffer <= 0 {
		return errors.New("analytics buffer must be positive")
	}
	if c.Sessions.EncryptionKey == "" && len(c.Sessions.FallbackKeys) > 0 {
		return errors.New("session fallback keys need an encryption key")
	}
	return nil
}

// Usage describes every supported environment variable.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}
