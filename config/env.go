package config

import (
	"os"
)

// Environment selects which loading strategy applies: env-with-defaults for
// development and test, CI secrets on CI, Docker secrets in production.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment resolves the runtime environment. CI takes precedence via
// the CI=true convention the runners set; everything else comes from ENV,
// defaulting to development so a bare checkout runs without setup.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}
