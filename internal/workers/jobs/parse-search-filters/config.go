// internal/workers/jobs/parse-search-filters/config.go
package parsesearchfilters

import "time"

type Config struct {
	Timeout time.Duration
	// MaxSalary caps an open-ended salary range.
	MaxSalary int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   10 * time.Second,
		MaxSalary: 100000000,
	}
}
