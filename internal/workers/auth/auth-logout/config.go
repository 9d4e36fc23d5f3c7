// internal/workers/auth/auth-logout/config.go
package authlogout

import (
	"fmt"
	"time"

	"job-portal-workers/internal/common/config"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	// DefaultTokenTTL applies when the access token carries no readable exp claim.
	DefaultTokenTTL time.Duration `mapstructure:"default_token_ttl"`
	// KeycloakLogout ends the identity provider sessions as well.
	KeycloakLogout bool `mapstructure:"keycloak_logout"`
	ScanCount      int64
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		MaxJobsActive:   5,
		Timeout:         10 * time.Second,
		DefaultTokenTTL: time.Hour,
		KeycloakLogout:  true,
		ScanCount:       100,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DefaultTokenTTL <= 0 {
		return fmt.Errorf("default_token_ttl must be positive")
	}
	return nil
}

// createConfigFromAppConfig overlays the worker entry and auth section on the defaults.
func createConfigFromAppConfig(appConfig *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if wc, ok := appConfig.Workers[TaskType]; ok {
		cfg.Enabled = wc.Enabled
		if wc.MaxJobsActive > 0 {
			cfg.MaxJobsActive = wc.MaxJobsActive
		}
		if wc.Timeout > 0 {
			cfg.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	if appConfig.Auth.SessionTTL > 0 {
		cfg.DefaultTokenTTL = time.Duration(appConfig.Auth.SessionTTL) * time.Second
	}
	cfg.KeycloakLogout = appConfig.Auth.Keycloak.URL != ""
	return cfg
}
