// internal/workers/communication/email-send/config.go
package emailsend

import (
	"fmt"
	"time"

	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/validation"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DefaultFrom   string        `mapstructure:"default_from"`
	// ConfigurationSet is passed to SES for delivery event tracking when set.
	ConfigurationSet string `mapstructure:"configuration_set"`
	MaxRecipients    int    `mapstructure:"max_recipients"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		DefaultFrom:   "noreply@jobportal.local",
		MaxRecipients: 50,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DefaultFrom == "" {
		return fmt.Errorf("default_from email is required")
	}
	if !validation.ValidateEmail(c.DefaultFrom) {
		return fmt.Errorf("default_from is not a valid email: %s", c.DefaultFrom)
	}
	if c.MaxRecipients <= 0 {
		return fmt.Errorf("max_recipients must be positive")
	}
	return nil
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
	if appConfig.Notifications.Email.FromEmail != "" {
		cfg.DefaultFrom = appConfig.Notifications.Email.FromEmail
	} else if appConfig.AWS.SES.FromEmail != "" {
		cfg.DefaultFrom = appConfig.AWS.SES.FromEmail
	}
	return cfg
}
