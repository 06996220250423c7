package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DogAPI  DogAPIConfig  `mapstructure:"dogapi"`
	Gallery GalleryConfig `mapstructure:"gallery"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// DogAPIConfig holds the remote image provider configuration
type DogAPIConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
}

// GalleryConfig controls how image panels grow while scrolling
type GalleryConfig struct {
	InitialBatches  int    `mapstructure:"initial_batches"`
	BatchSize       int    `mapstructure:"batch_size"`
	ScrollThreshold int    `mapstructure:"scroll_threshold"`
	Placeholder     string `mapstructure:"placeholder"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads configuration from an optional YAML file with environment variable overrides.
// An empty path searches for config.yaml in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults and environment are enough to run without a file
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.DogAPI.BaseURL == "" {
		return fmt.Errorf("dogapi.base_url must not be empty")
	}
	if c.Gallery.BatchSize <= 0 {
		return fmt.Errorf("gallery.batch_size must be positive, got %d", c.Gallery.BatchSize)
	}
	if c.Gallery.InitialBatches < 0 {
		return fmt.Errorf("gallery.initial_batches must not be negative, got %d", c.Gallery.InitialBatches)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdown_timeout", 5)

	v.SetDefault("dogapi.base_url", "https://dog.ceo/api")
	v.SetDefault("dogapi.timeout", 30)
	v.SetDefault("dogapi.max_retries", 2)
	v.SetDefault("dogapi.max_requests_per_second", 20)
	v.SetDefault("dogapi.proxies", []string{})

	v.SetDefault("gallery.initial_batches", 2)
	v.SetDefault("gallery.batch_size", 2)
	v.SetDefault("gallery.scroll_threshold", 5)
	v.SetDefault("gallery.placeholder", "/static/dog-placeholder.svg")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
