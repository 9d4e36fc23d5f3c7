// internal/workers/application/score-candidate-fit/config.go
package scorecandidatefit

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
