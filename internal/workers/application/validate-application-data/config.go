// internal/workers/application/validate-application-data/config.go
package validateapplicationdata

import "time"

type Config struct {
	Timeout        time.Duration
	MaxCoverLetter int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        10 * time.Second,
		MaxCoverLetter: 5000,
	}
}
