// Package config loads the server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every setting the server needs. It is built once at startup
// and passed by value — nothing mutates it afterwards.
type Config struct {
	Port     int
	DBPath   string
	LogLevel string

	// JWTSecret signs access tokens. Required.
	JWTSecret string

	// AdminEmail, when set, is promoted to the admin role at startup.
	AdminEmail string

	// GitHub OAuth. Optional — the OAuth routes are only registered when
	// both the client ID and secret are present.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// SMTP relay. Optional — leaving SMTPHost empty disables email.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		DBPath:             getEnvOrDefault("DB_PATH", "data/registry.db"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:           getEnvOrDefault("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
	}

	var err error
	if cfg.Port, err = getEnvIntOrDefault("PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.SMTPPort, err = getEnvIntOrDefault("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}

// GitHubEnabled reports whether the GitHub OAuth flow is configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
