// Package config loads the content-service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/media"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/database"
	"github.com/vasapolrittideah/formation-hub/shared/discovery"
	"github.com/vasapolrittideah/formation-hub/shared/logger"
)

// TokenConfig holds the settings needed to verify access tokens issued by auth-service.
type TokenConfig struct {
	Issuer   string        `env:"TOKEN_ISSUER"          envDefault:"formation-hub"`
	Audience string        `env:"TOKEN_AUDIENCE"        envDefault:"formation-hub"`
	Secret   string        `env:"TOKEN_SECRET,required"`
	TTL      time.Duration `env:"TOKEN_TTL"             envDefault:"168h"`
}

// ContentServiceConfig is the complete content-service configuration.
type ContentServiceConfig struct {
	ServiceName   string `env:"SERVICE_NAME"    envDefault:"content-service"`
	HTTPPort      int    `env:"HTTP_PORT"       envDefault:"8082"`
	GRPCPort      int    `env:"GRPC_PORT"       envDefault:"9082"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`

	Token     TokenConfig
	Media     media.Config
	Mongo     database.Config
	Log       logger.Config
	Discovery discovery.Config
}

// Load parses the environment into a ContentServiceConfig and validates it.
func Load() (*ContentServiceConfig, error) {
	cfg, err := env.ParseAs[ContentServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// AccessToken returns the settings used to verify access tokens.
func (c *ContentServiceConfig) AccessToken() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:   c.Token.Secret,
		Issuer:   c.Token.Issuer,
		Audience: c.Token.Audience,
		TTL:      c.Token.TTL,
	}
}

func (c *ContentServiceConfig) validate() error {
	if c.Token.Secret == "" {
		return errors.New("missing TOKEN_SECRET environment variable")
	}
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		return errors.New("HTTP_PORT and GRPC_PORT must be positive")
	}
	if c.Media.Enabled() && c.Media.PresignTTL <= 0 {
		return errors.New("S3_PRESIGN_TTL must be positive")
	}

	return nil
}
