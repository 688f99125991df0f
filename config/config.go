package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. RECIPELENS_SERVER_PORT
const EnvPrefix = "RECIPELENS"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Nutrition NutritionConfig
	Storage   StorageConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	USDA      USDAConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// NutritionConfig holds engine configuration
type NutritionConfig struct {
	ReferenceTable string   `mapstructure:"reference_table"` // empty means the built-in table
	ExtraIgnore    []string `mapstructure:"extra_ignore"`
	Workers        int      `mapstructure:"workers"`
}

// StorageConfig selects the recipe store
type StorageConfig struct {
	Type        string `mapstructure:"type"` // "file" or "sqlite"
	RecipesPath string `mapstructure:"recipes_path"`
	SQLitePath  string `mapstructure:"sqlite_path"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL        string        `mapstructure:"redis_url"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	USDA  int `mapstructure:"usda"`   // requests per hour
}

// USDAConfig holds USDA API configuration
type USDAConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinConfidence float64       `mapstructure:"min_confidence"`
}

// Load reads .env, then config files and RECIPELENS_* environment variables
func Load() (*Config, error) {
	if err := LoadEnvFile(); err != nil {
		return nil, err
	}
	return LoadFrom(viper.New())
}

// LoadFrom loads configuration into v, which may already carry bound flags.
// A non-empty "config" key names an explicit config file.
func LoadFrom(v *viper.Viper) (*Config, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/recipelens/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// BindFlags binds flag names to config keys. Flags the user did not set are
// skipped so that their zero defaults don't mask config file values.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// LoadEnvFile loads .env from the working directory without overriding set variables
func LoadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values.
// Every key gets a default so that environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.request_timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("nutrition.reference_table", "")
	v.SetDefault("nutrition.extra_ignore", []string{})
	v.SetDefault("nutrition.workers", 4)

	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.recipes_path", "data/recipes.json")
	v.SetDefault("storage.sqlite_path", "data/recipes.db")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.usda", 1000)

	// USDA defaults
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.timeout", "30s")
	v.SetDefault("usda.min_confidence", 40.0)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	switch config.Storage.Type {
	case "file":
		if config.Storage.RecipesPath == "" {
			return fmt.Errorf("recipes path is required when storage type is 'file'")
		}
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required when storage type is 'sqlite'")
		}
	default:
		return fmt.Errorf("storage type must be 'file' or 'sqlite', got: %s", config.Storage.Type)
	}

	if config.Nutrition.Workers <= 0 {
		return fmt.Errorf("nutrition workers must be positive, got: %d", config.Nutrition.Workers)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}

// RequireUSDA checks the settings needed to call FoodData Central
func (c *Config) RequireUSDA() error {
	if c.USDA.APIKey == "" {
		return fmt.Errorf("USDA API key is required (set %s_USDA_API_KEY)", EnvPrefix)
	}
	return nil
}
