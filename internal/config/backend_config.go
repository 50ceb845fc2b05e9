package config

import "time"

type BackendConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type Backend struct{}

var _ BackendConfig = Backend{}

// GetAPIBaseURL is the InterNUShip API host that issues and verifies tokens and parses résumés.
func (Backend) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8000")
}

func (Backend) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 30*time.Second)
}
