// internal/workers/campus/manage-group-membership/config.go
package managegroupmembership

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
