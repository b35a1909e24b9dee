// Package config holds the runtime settings of a schema and loads them from
// a file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load, e.g.
// TYPEGRAPH_MAX_PARALLELISM.
const EnvPrefix = "TYPEGRAPH"

type Config struct {
	// MaxParallelism bounds the representations resolved concurrently.
	MaxParallelism int `mapstructure:"max_parallelism"`
	// UseFieldResolvers exposes struct fields next to methods.
	UseFieldResolvers bool `mapstructure:"use_field_resolvers"`
	// LogLevel is a zerolog level name.
	LogLevel string `mapstructure:"log_level"`
	// EntityTimeout bounds one entity batch when positive.
	EntityTimeout time.Duration `mapstructure:"entity_timeout"`
}

func Default() *Config {
	return &Config{
		MaxParallelism:    10,
		UseFieldResolvers: true,
		LogLevel:          "info",
	}
}

// Load reads path, when not empty, and the TYPEGRAPH_ environment variables
// on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("max_parallelism", def.MaxParallelism)
	v.SetDefault("use_field_resolvers", def.UseFieldResolvers)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("entity_timeout", def.EntityTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the value ranges.
func (c *Config) Validate() error {
	if c.MaxParallelism < 1 {
		return fmt.Errorf("max_parallelism must be at least 1, got %d", c.MaxParallelism)
	}
	if c.EntityTimeout < 0 {
		return fmt.Errorf("entity_timeout must not be negative, got %s", c.EntityTimeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}
