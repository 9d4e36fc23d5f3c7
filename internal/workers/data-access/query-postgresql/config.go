// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import "time"

type Config struct {
	Timeout time.Duration
	// PageSize applies when the caller sends no limit. Zero defers to the query registry default.
	PageSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		PageSize: 20,
	}
}
