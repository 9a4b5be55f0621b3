package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"lruk-buffer-golang/src/disk"
)

type Config struct {
	Pool struct {
		Size   int    `mapstructure:"size"`
		K      int    `mapstructure:"k"`
		Policy string `mapstructure:"policy"`
		File   string `mapstructure:"file"`
	} `mapstructure:"pool"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("pool.size", 16)
	v.SetDefault("pool.k", 2)
	v.SetDefault("pool.policy", disk.PolicyLRUK)
	v.SetDefault("pool.file", "lruk.db")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("LRUK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the configuration used when no file is given, with
// LRUK_* environment overrides applied.
func Default() (*Config, error) {
	return decode(newViper())
}

// LoadConfig reads a YAML file. Missing keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.Pool.Size <= 0 {
		return fmt.Errorf("pool.size must be positive, got %d", cfg.Pool.Size)
	}
	if cfg.Pool.K < 1 {
		return fmt.Errorf("pool.k must be >=1, got %d", cfg.Pool.K)
	}
	switch cfg.Pool.Policy {
	case disk.PolicyLRUK, disk.PolicyLRU:
	default:
		return fmt.Errorf("pool.policy must be %q or %q, got %q", disk.PolicyLRUK, disk.PolicyLRU, cfg.Pool.Policy)
	}
	if cfg.Pool.File == "" {
		return fmt.Errorf("pool.file must not be empty")
	}
	return nil
}
