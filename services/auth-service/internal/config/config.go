// Package config loads the auth-service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/database"
	"github.com/vasapolrittideah/formation-hub/shared/discovery"
	"github.com/vasapolrittideah/formation-hub/shared/logger"
	"github.com/vasapolrittideah/formation-hub/shared/mailer"
)

// TokenConfig holds the signing settings for access and password reset tokens.
type TokenConfig struct {
	Issuer                      string        `env:"TOKEN_ISSUER"          envDefault:"formation-hub"`
	Audience                    string        `env:"TOKEN_AUDIENCE"        envDefault:"formation-hub"`
	AccessTokenSecret           string        `env:"TOKEN_SECRET,required"`
	AccessTokenExpiresIn        time.Duration `env:"TOKEN_TTL"             envDefault:"168h"`
	PasswordResetTokenSecret    string        `env:"PASSWORD_RESET_SECRET"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TTL"    envDefault:"30m"`
}

// AdminBootstrapConfig optionally seeds the first admin account.
type AdminBootstrapConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Name     string `env:"ADMIN_NAME" envDefault:"Administrator"`
}

// AuthServiceConfig is the complete auth-service configuration.
type AuthServiceConfig struct {
	ServiceName         string `env:"SERVICE_NAME"    envDefault:"auth-service"`
	HTTPPort            int    `env:"HTTP_PORT"       envDefault:"8081"`
	GRPCPort            int    `env:"GRPC_PORT"       envDefault:"9081"`
	PublicBaseURL       string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`
	AppPasswordResetURL string `env:"APP_PASSWORD_RESET_URL"`
	AppRegisterURL      string `env:"APP_REGISTER_URL"`
	GoogleClientID      string `env:"GOOGLE_CLIENT_ID"`

	Token     TokenConfig
	Admin     AdminBootstrapConfig
	Mongo     database.Config
	Mailer    mailer.Config
	Log       logger.Config
	Discovery discovery.Config
}

// Load parses the environment into an AuthServiceConfig and validates it.
func Load() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if cfg.Token.PasswordResetTokenSecret == "" {
		cfg.Token.PasswordResetTokenSecret = cfg.Token.AccessTokenSecret + ":password-reset"
	}
	if cfg.AppPasswordResetURL == "" {
		cfg.AppPasswordResetURL = cfg.PublicBaseURL + "/reset-password"
	}
	if cfg.AppRegisterURL == "" {
		cfg.AppRegisterURL = cfg.PublicBaseURL + "/register"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// AccessToken returns the settings used to sign access tokens.
func (c *AuthServiceConfig) AccessToken() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:   c.Token.AccessTokenSecret,
		Issuer:   c.Token.Issuer,
		Audience: c.Token.Audience,
		TTL:      c.Token.AccessTokenExpiresIn,
	}
}

// PasswordResetToken returns the settings used to sign password reset links.
func (c *AuthServiceConfig) PasswordResetToken() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:   c.Token.PasswordResetTokenSecret,
		Issuer:   c.Token.Issuer,
		Audience: c.Token.Issuer + "/password-reset",
		TTL:      c.Token.PasswordResetTokenExpiresIn,
	}
}

func (c *AuthServiceConfig) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return errors.New("missing TOKEN_SECRET environment variable")
	}
	if c.Token.AccessTokenExpiresIn <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Token.PasswordResetTokenExpiresIn <= 0 {
		return errors.New("PASSWORD_RESET_TTL must be positive")
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		return errors.New("HTTP_PORT and GRPC_PORT must be positive")
	}

	return nil
}
