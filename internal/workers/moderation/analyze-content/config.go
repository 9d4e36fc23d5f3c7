// internal/workers/moderation/analyze-content/config.go
package analyzecontent

import "time"

type Config struct {
	Timeout time.Duration
	// MaxLength bounds the text accepted for analysis, in runes.
	MaxLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   5 * time.Second,
		MaxLength: 20000,
	}
}
