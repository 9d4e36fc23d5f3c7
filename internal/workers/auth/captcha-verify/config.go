package captchaverify

import (
	"fmt"
	"time"

	"job-portal-workers/internal/common/config"
)

type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxJobsActive  int           `mapstructure:"max_jobs_active"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	VerifyClientIP bool          `mapstructure:"verify_client_ip"`
	Expiry         time.Duration `mapstructure:"expiry"`
	CodeLength     int           `mapstructure:"code_length"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  10,
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		VerifyClientIP: false,
		Expiry:         5 * time.Minute,
		CodeLength:     6,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if c.Expiry <= 0 {
		return fmt.Errorf("expiry must be positive")
	}
	if c.CodeLength < 4 || c.CodeLength > 8 {
		return fmt.Errorf("code_length must be between 4 and 8")
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
	captcha := appConfig.Auth.Captcha
	if captcha.TTL > 0 {
		cfg.Expiry = time.Duration(captcha.TTL) * time.Second
	}
	if captcha.MaxAttempts > 0 {
		cfg.MaxAttempts = captcha.MaxAttempts
	}
	cfg.VerifyClientIP = captcha.VerifyClientIP
	return cfg
}
