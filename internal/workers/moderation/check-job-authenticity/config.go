// internal/workers/moderation/check-job-authenticity/config.go
package checkjobauthenticity

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
