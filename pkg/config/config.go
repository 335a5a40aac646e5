// Package config provides configuration management for the hsdd engine.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the engine: unique table sizes,
// cache capacities and the arena size, plus logging.
type Config struct {
	SDD SDDConfig `mapstructure:"sdd"`
	Hom HomConfig `mapstructure:"hom"`
	Log LogConfig `mapstructure:"log"`
}

// SDDConfig holds SDD-side unique table, cache and arena sizing.
type SDDConfig struct {
	UniqueTableSize   int `mapstructure:"unique_table_size"`
	DifferenceCacheSize int `mapstructure:"difference_cache_size"`
	IntersectionCacheSize int `mapstructure:"intersection_cache_size"`
	SumCacheSize      int `mapstructure:"sum_cache_size"`
	ArenaSize         int `mapstructure:"arena_size"`
}

// HomConfig holds homomorphism-side unique table and cache sizing.
type HomConfig struct {
	UniqueTableSize int `mapstructure:"unique_table_size"`
	CacheSize       int `mapstructure:"cache_size"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path, falling back to
// defaults when no file is found.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hsdd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hsdd")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration defaults without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sdd.unique_table_size", 1024)
	v.SetDefault("sdd.difference_cache_size", 10000)
	v.SetDefault("sdd.intersection_cache_size", 10000)
	v.SetDefault("sdd.sum_cache_size", 10000)
	v.SetDefault("sdd.arena_size", 1<<20) // 1 MiB

	v.SetDefault("hom.unique_table_size", 1024)
	v.SetDefault("hom.cache_size", 10000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.SDD.UniqueTableSize < 1 {
		return fmt.Errorf("sdd.unique_table_size must be at least 1")
	}
	if c.Hom.UniqueTableSize < 1 {
		return fmt.Errorf("hom.unique_table_size must be at least 1")
	}
	if c.SDD.ArenaSize < 0 {
		return fmt.Errorf("sdd.arena_size must be >= 0")
	}
	if c.SDD.SumCacheSize < 1 || c.SDD.IntersectionCacheSize < 1 || c.SDD.DifferenceCacheSize < 1 {
		return fmt.Errorf("sdd cache sizes must be at least 1")
	}
	if c.Hom.CacheSize < 1 {
		return fmt.Errorf("hom.cache_size must be at least 1")
	}
	return nil
}
