// Package config wraps Viper for application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. CROPADVISOR_SERVER_PORT.
const EnvPrefix = "CROPADVISOR"

// Config is a nil-safe view over a Viper instance.
type Config struct {
	v *viper.Viper
}

// New wraps v. A nil v behaves as an empty configuration.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	return &Config{v: v}
}

// GetString returns the value associated with the key as a string.
func (c *Config) GetString(key string) string { return c.v.GetString(key) }

// GetInt returns the value associated with the key as an int.
func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }

// GetFloat64 returns the value associated with the key as a float64.
func (c *Config) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }

// GetBool returns the value associated with the key as a bool.
func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

// GetDuration returns the value associated with the key as a time.Duration.
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }

// IsSet reports whether the key has a value.
func (c *Config) IsSet(key string) bool { return c.v.IsSet(key) }

// Sub returns the subtree at key. A missing subtree yields an empty Config,
// never nil.
func (c *Config) Sub(key string) *Config {
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole configuration into target using mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	return c.v.Unmarshal(target)
}

// Settings is the typed application configuration.
type Settings struct {
	Server    ServerSettings    `mapstructure:"server"`
	Dataset   DatasetSettings   `mapstructure:"dataset"`
	Selector  SelectorSettings  `mapstructure:"selector"`
	RateLimit RateLimitSettings `mapstructure:"ratelimit"`
	Fallback  FallbackSettings  `mapstructure:"fallback"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatasetSettings locates the reference table. An empty Path selects the
// embedded sample. An empty RankKey keeps the dataset's own rank column.
type DatasetSettings struct {
	Path    string `mapstructure:"path"`
	RankKey string `mapstructure:"rank_key"`
}

// SelectorSettings bounds the capacity selector.
type SelectorSettings struct {
	MaxCells int `mapstructure:"max_cells"`
}

// RateLimitSettings configures per-client request limiting. RPS <= 0 disables it.
type RateLimitSettings struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// FallbackSettings configures the empty-result substitution.
type FallbackSettings struct {
	Label string `mapstructure:"label"`
}

// SetDefaults installs default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.rank_key", "")
	v.SetDefault("selector.max_cells", 10_000_000)
	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)
	v.SetDefault("fallback.label", "Recommended crop: cotton")
}

// Load reads configuration from path (YAML; optional) layered over defaults
// and CROPADVISOR_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("cropadvisor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return New(v), nil
}

// Settings decodes the typed configuration.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// Viper exposes the underlying instance for flag binding.
func (c *Config) Viper() *viper.Viper {
	return c.v
}
