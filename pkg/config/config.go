// Package config loads the article catalog configuration from an optional
// YAML file and CATALOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, so that
// source.base_url is read from CATALOG_SOURCE_BASE_URL.
const EnvPrefix = "CATALOG"

// Source kinds.
const (
	KindHTTP  = "http"
	KindRedis = "redis"
	KindDir   = "dir"
)

// Config is the complete catalog configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Source  SourceConfig  `mapstructure:"source"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Dir     DirConfig     `mapstructure:"dir"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// CatalogConfig lists the documents making up the catalog.
type CatalogConfig struct {
	IDs          []string `mapstructure:"ids" validate:"min=1,unique,dive,required"`
	DefaultLimit int      `mapstructure:"default_limit" validate:"gt=0"`
}

// SourceConfig selects the document source. BaseURL, UserAgent, MaxAttempts,
// RateLimit and Timeout apply to the http kind only.
type SourceConfig struct {
	Kind        string        `mapstructure:"kind" validate:"oneof=http redis dir"`
	BaseURL     string        `mapstructure:"base_url" validate:"required_if=Kind http"`
	Locator     string        `mapstructure:"locator" validate:"contains={id}"`
	UserAgent   string        `mapstructure:"user_agent" validate:"required"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1"`
	RateLimit   float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// RedisConfig configures the redis source kind.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Locator  string `mapstructure:"locator" validate:"contains={id}"`
}

// DirConfig configures the dir source kind.
type DirConfig struct {
	Root    string `mapstructure:"root"`
	Locator string `mapstructure:"locator" validate:"contains={id}"`
}

// FetchConfig bounds the bulk load.
type FetchConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency" validate:"gt=0"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their configuration key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}

// Load reads configuration from cfgFile (or catalog.yaml in the working
// directory, if present) and the environment, applies defaults and validates.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/article-catalog")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.ids", []string{})
	v.SetDefault("catalog.default_limit", 6)

	v.SetDefault("source.kind", KindHTTP)
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.locator", "/articles/{id}.json")
	v.SetDefault("source.user_agent", "article-catalog/0.1.0")
	v.SetDefault("source.max_attempts", 1)
	v.SetDefault("source.rate_limit", 0.0)
	v.SetDefault("source.timeout", 30*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.locator", "articles:{id}")

	v.SetDefault("dir.root", "")
	v.SetDefault("dir.locator", "articles/{id}.json")

	v.SetDefault("fetch.max_concurrency", 10)
	v.SetDefault("fetch.timeout", time.Duration(0))

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Validate checks field constraints and that the selected source kind has a location.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	switch c.Source.Kind {
	case KindRedis:
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr is required for source kind redis")
		}
	case KindDir:
		if c.Dir.Root == "" {
			problems = append(problems, "dir.root is required for source kind dir")
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// describe renders a field error as "<key> <problem>".
func describe(fe validator.FieldError) string {
	// Namespace is "Config.<section>.<key>[...]".
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}

	switch fe.Tag() {
	case "required", "required_if":
		return key + " is required"
	case "min":
		return key + " must not be empty"
	case "unique":
		return key + " must not contain duplicates"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %v)", key, fe.Param(), fe.Value())
	case "contains":
		return fmt.Sprintf("%s must contain %s", key, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", key, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", key, fe.Tag())
	}
}
