package registeruser

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
	// SelfServiceRoles are the roles a user may pick at sign-up. Staff roles are granted by admins.
	SelfServiceRoles []models.Role `mapstructure:"self_service_roles"`
	MinPasswordLen   int           `mapstructure:"min_password_length"`
	// RequireCaptcha rejects sign-ups that carry no solved challenge.
	RequireCaptcha bool `mapstructure:"require_captcha"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxJobsActive:    5,
		Timeout:          20 * time.Second,
		SelfServiceRoles: []models.Role{models.RoleCandidate, models.RoleEmployer, models.RoleStudent, models.RoleFaculty},
		MinPasswordLen:   8,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if len(c.SelfServiceRoles) == 0 {
		return fmt.Errorf("self_service_roles must not be empty")
	}
	return nil
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
	cfg.RequireCaptcha = appConfig.Auth.Captcha.Required
	return cfg
}
