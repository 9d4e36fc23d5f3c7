// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import "time"

type Config struct {
	Timeout         time.Duration
	JobsIndex       string
	CandidatesIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		JobsIndex:       "jobs",
		CandidatesIndex: "candidates",
	}
}
