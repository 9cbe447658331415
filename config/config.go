// Package config loads cache settings from an optional YAML file and
// MEMOCACHE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/krisalay/memo-cache/logging"
)

const (
	DefaultCapacity   = 1000
	DefaultTTLSeconds = 3600
	EnvPrefix         = "MEMOCACHE"
)

// Config stores all the configurations
type Config struct {
	Cache   Cache          `mapstructure:"cache" validate:"required"`
	Log     logging.Config `mapstructure:"log" validate:"required"`
	Metrics Metrics        `mapstructure:"metrics" validate:"required"`
}

// Cache holds the construction parameters of one cache.
type Cache struct {
	Capacity   int    `mapstructure:"capacity" validate:"gt=0"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
	Shards     int    `mapstructure:"shards" validate:"gte=1,ltefield=Capacity"`
	Eviction   string `mapstructure:"eviction" validate:"oneof=fifo lru"`
}

type Metrics struct {
	Namespace string `mapstructure:"namespace" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration. path may name a config file; when empty, memocache.yaml is
// looked up in . and ./config. A missing file is not an error: defaults and
// environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("memocache")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Cache: Cache{
			Capacity:   DefaultCapacity,
			TTLSeconds: DefaultTTLSeconds,
			Shards:     1,
			Eviction:   "fifo",
		},
		Log:     *logging.DefaultConfig(),
		Metrics: Metrics{Namespace: "memocache"},
	}
}

// Validate checks every field and reports the first failures as one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("cache.capacity", d.Cache.Capacity)
	v.SetDefault("cache.ttl_seconds", d.Cache.TTLSeconds)
	v.SetDefault("cache.shards", d.Cache.Shards)
	v.SetDefault("cache.eviction", d.Cache.Eviction)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.add_source", d.Log.AddSource)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}
