// internal/workers/campus/review-leave-application/config.go
package reviewleaveapplication

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
