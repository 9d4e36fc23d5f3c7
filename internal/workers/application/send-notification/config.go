// internal/workers/application/send-notification/config.go
package sendnotification

import (
	"time"

	"job-portal-workers/internal/common/config"
)

type Config struct {
	EmailEnabled  bool
	SMSEnabled    bool
	FromEmail     string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		FromEmail:     "noreply@jobportal.local",
		RatePerSecond: 10,
		Burst:         5,
		Timeout:       30 * time.Second,
	}
}

// FromNotifications overlays the shared notifications section on the defaults.
func FromNotifications(n config.NotificationConfig) *Config {
	cfg := LoadConfig()
	cfg.EmailEnabled = n.Email.Enabled
	cfg.SMSEnabled = n.SMS.Enabled
	if n.Email.FromEmail != "" {
		cfg.FromEmail = n.Email.FromEmail
	}
	if n.RatePerSecond > 0 {
		cfg.RatePerSecond = n.RatePerSecond
	}
	if n.Burst > 0 {
		cfg.Burst = n.Burst
	}
	return cfg
}
