package config

import "time"

const (
	Development = "development"
	Production  = "production"

	// The only host name that selects the development environment
	DevelopmentHost = "localhost"
)

// API endpoint the form posts to
type Environment struct {
	Name    string        `json:"name"    yaml:"name"`
	APIURL  string        `json:"api_url" yaml:"api_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

type Environments struct {
	Development Environment
	Production  Environment
}

// Base URLs are placeholders and are expected to be replaced through config before deployment.
func DefaultEnvironments() Environments {
	return Environments{
		Development: Environment{
			Name:    Development,
			APIURL:  "https://your-api-dev.execute-api.region.amazonaws.com/dev",
			Timeout: 5 * time.Second,
		},
		Production: Environment{
			Name:    Production,
			APIURL:  "https://your-api-prod.execute-api.region.amazonaws.com/prod",
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve picks development for exactly "localhost" and production for every other host.
func Resolve(envs Environments, host string) Environment {
	if host == DevelopmentHost {
		return envs.Development
	}
	return envs.Production
}
