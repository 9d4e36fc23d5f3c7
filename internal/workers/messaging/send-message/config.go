// internal/workers/messaging/send-message/config.go
package sendmessage

import "time"

type Config struct {
	Timeout       time.Duration
	MaxBodyLength int
	FlagThreshold int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		MaxBodyLength: 4000,
		FlagThreshold: 40,
	}
}
