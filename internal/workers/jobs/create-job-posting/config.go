// internal/workers/jobs/create-job-posting/config.go
package createjobposting

import "time"

type Config struct {
	Timeout   time.Duration
	IndexName string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		IndexName: "jobs",
	}
}
