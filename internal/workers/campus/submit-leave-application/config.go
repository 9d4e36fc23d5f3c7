// internal/workers/campus/submit-leave-application/config.go
package submitleaveapplication

import "time"

type Config struct {
	Timeout time.Duration
	MaxDays int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		MaxDays: 30,
	}
}
