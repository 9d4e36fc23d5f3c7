// internal/workers/campus/publish-announcement/config.go
package publishannouncement

import "time"

type Config struct {
	Timeout        time.Duration
	PublishTimeout time.Duration
	// MaxParallel bounds concurrent SNS publishes.
	MaxParallel int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		PublishTimeout: 5 * time.Second,
		MaxParallel:    8,
	}
}
