// internal/workers/bgv/submit-bgv-document/config.go
package submitbgvdocument

import "time"

type Config struct {
	Timeout time.Duration
	// Buckets lists where BGV files may live.
	Buckets []string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Buckets: []string{"resumes", "bgv"},
	}
}
