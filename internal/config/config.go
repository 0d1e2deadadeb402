package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tournevent/emc/pkg/envoimoinscher"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// EnvoiMoinsCher
	EMCLogin      string        `envconfig:"EMC_LOGIN"`
	EMCPassword   string        `envconfig:"EMC_PASSWORD"`
	EMCAPIKey     string        `envconfig:"EMC_API_KEY"`
	EMCBaseURL    string        `envconfig:"EMC_BASE_URL"`
	EMCProduction bool          `envconfig:"EMC_PRODUCTION" default:"false"`
	EMCUseMock    bool          `envconfig:"EMC_USE_MOCK" default:"false"`
	EMCTimeout    time.Duration `envconfig:"EMC_TIMEOUT" default:"30s"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"emc-adapter"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// EnvoiMoinsCher returns the adapter configuration.
func (c *Config) EnvoiMoinsCher() envoimoinscher.Config {
	return envoimoinscher.Config{
		Login:      c.EMCLogin,
		Password:   c.EMCPassword,
		APIKey:     c.EMCAPIKey,
		BaseURL:    c.EMCBaseURL,
		Production: c.EMCProduction,
		Timeout:    c.EMCTimeout,
		UseMock:    c.EMCUseMock,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("envoimoinscher.production", c.EMCProduction),
		attribute.Bool("envoimoinscher.mock", c.EMCUseMock),
	}
}
