package authsigninlinkedin

import (
	"fmt"
	"time"

	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/models"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	TokenURL      string        `mapstructure:"token_url"`
	APIURL        string        `mapstructure:"api_url"`
	// DefaultRole is given to first-time users whose sign-in carries no role.
	DefaultRole      models.Role   `mapstructure:"default_role"`
	SelfServiceRoles []models.Role `mapstructure:"self_service_roles"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxJobsActive:    5,
		Timeout:          20 * time.Second,
		TokenURL:         "https://www.linkedin.com/oauth/v2/accessToken",
		APIURL:           "https://api.linkedin.com",
		DefaultRole:      models.RoleCandidate,
		SelfServiceRoles: []models.Role{models.RoleCandidate, models.RoleEmployer, models.RoleStudent, models.RoleFaculty},
	}
}

// Validate leaves the app credentials optional; jobs fail with a business error until they are set.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.TokenURL == "" || c.APIURL == "" {
		return fmt.Errorf("token_url and api_url are required")
	}
	if !c.allowsRole(c.DefaultRole) {
		return fmt.Errorf("default_role %q is not a self-service role", c.DefaultRole)
	}
	return nil
}

func (c *Config) configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c *Config) allowsRole(role models.Role) bool {
	for _, r := range c.SelfServiceRoles {
		if r == role {
			return true
		}
	}
	return false
}

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
	li := appConfig.Auth.LinkedIn
	cfg.ClientID = li.ClientID
	cfg.ClientSecret = li.ClientSecret
	if li.TokenURL != "" {
		cfg.TokenURL = li.TokenURL
	}
	if li.APIURL != "" {
		cfg.APIURL = li.APIURL
	}
	if role, ok := models.ParseRole(li.DefaultRole); ok {
		cfg.DefaultRole = role
	}
	return cfg
}
