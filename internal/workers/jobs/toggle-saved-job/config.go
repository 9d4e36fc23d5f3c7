// internal/workers/jobs/toggle-saved-job/config.go
package togglesavedjob

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
