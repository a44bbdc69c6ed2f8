// Package config loads settings from config.yaml, a .env file, PORTFOLIO_*
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PORTFOLIO"

// Content source kinds.
const (
	SourceFiles  = "files"
	SourceStore  = "store"
	SourceRemote = "remote"
)

type Config struct {
	Env     string        `mapstructure:"env" validate:"required"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Site    SiteConfig    `mapstructure:"site"`
	Content ContentConfig `mapstructure:"content"`
	Store   StoreConfig   `mapstructure:"store"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Preview PreviewConfig `mapstructure:"preview"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

type SiteConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Role        string `mapstructure:"role"`
	Description string `mapstructure:"description"`
	URL         string `mapstructure:"url" validate:"required,url"`
	Twitter     string `mapstructure:"twitter"`
	GitHub      string `mapstructure:"github"`
	LinkedIn    string `mapstructure:"linkedin" validate:"omitempty,url"`
	IssuesURL   string `mapstructure:"issues_url" validate:"omitempty,url"`
}

type ContentConfig struct {
	Source   string   `mapstructure:"source" validate:"required,oneof=files store remote"`
	Dir      string   `mapstructure:"dir"`
	Featured []string `mapstructure:"featured"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type RemoteConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"omitempty,url"`
	ProjectID  string        `mapstructure:"project_id"`
	Dataset    string        `mapstructure:"dataset"`
	APIVersion string        `mapstructure:"api_version"`
	Token      string        `mapstructure:"token"`
	Query      string        `mapstructure:"query"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type PreviewConfig struct {
	SecretHash string `mapstructure:"secret_hash"`
	Secure     bool   `mapstructure:"secure_cookie"`
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file; when empty ./config.yaml is optional.
	File string
	// EnvFile is loaded into the environment first when it exists.
	EnvFile string
	// Bind lets the caller attach command line flags to keys.
	Bind func(v *viper.Viper) error
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("site.name", "My Portfolio")
	v.SetDefault("site.description", "Thoughts on software, programming and technology.")
	v.SetDefault("site.url", "http://localhost:8080")
	v.SetDefault("site.role", "")
	v.SetDefault("site.twitter", "")
	v.SetDefault("site.github", "")
	v.SetDefault("site.linkedin", "")
	v.SetDefault("site.issues_url", "")
	v.SetDefault("content.source", SourceFiles)
	v.SetDefault("content.dir", "content/posts")
	v.SetDefault("content.featured", []string{})
	v.SetDefault("store.path", "data/badger")
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.project_id", "")
	v.SetDefault("remote.dataset", "")
	v.SetDefault("remote.api_version", "2021-10-21")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.query", "")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("preview.secret_hash", "")
	v.SetDefault("preview.secure_cookie", false)
}

// Load reads the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.File != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if opts.Bind != nil {
		if err := opts.Bind(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the settings each source needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Content.Source {
	case SourceFiles:
		if c.Content.Dir == "" {
			return errors.New("invalid config: content.dir is required for the files source")
		}
	case SourceRemote:
		if c.Remote.Dataset == "" || (c.Remote.ProjectID == "" && c.Remote.BaseURL == "") {
			return errors.New("invalid config: remote.dataset and remote.project_id or remote.base_url are required for the remote source")
		}
	}
	return nil
}
