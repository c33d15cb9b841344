package config

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequiredEnvVars []string
	RequiredSecrets []string
}

var (
	// Strict requirements apply only where misconfiguration should fail fast.
	// Development and test fall back to localhost defaults instead.
	requirements = map[Environment]ConfigRequirements{
		CI: {
			RequiredEnvVars: []string{
				"SERVER_PORT",
				"SERVER_HOST",
				"DB_HOST",
				"DB_PORT",
				"DB_USER",
				"DB_NAME",
				"DB_SSL_MODE",
				"REDIS_HOST",
				"REDIS_PORT",
				"TEST_DB_PASSWORD",
				"TEST_JWT_SECRET",
			},
			RequiredSecrets: []string{}, // CI uses environment variables, not Docker secrets
		},
		Production: {
			RequiredEnvVars: []string{},
			RequiredSecrets: []string{
				"server_port",
				"server_host",
				"db_host",
				"db_port",
				"db_user",
				"db_password",
				"db_name",
				"redis_host",
				"redis_port",
				"jwt_secret",
			},
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs, ok := requirements[env]
	if !ok {
		// Development and test environments always load with defaults.
		return nil
	}

	var errors []string

	for _, envVar := range reqs.RequiredEnvVars {
		if value := os.Getenv(envVar); value == "" {
			errors = append(errors, fmt.Sprintf("required environment variable %s is not set", envVar))
		}
	}

	for _, secret := range reqs.RequiredSecrets {
		if value := readSecret(secret); value == "" {
			errors = append(errors, fmt.Sprintf("required secret %s is not set", secret))
		}
	}

	if cfg.DBPassword == "" {
		errors = append(errors, "database password is required")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT secret is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
