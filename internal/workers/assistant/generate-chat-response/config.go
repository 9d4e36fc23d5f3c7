// internal/workers/assistant/generate-chat-response/config.go
package generatechatresponse

import "time"

type Config struct {
	Timeout    time.Duration
	HistoryTTL time.Duration
	// MaxHistory is the number of entries kept per conversation.
	MaxHistory int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    10 * time.Second,
		HistoryTTL: 24 * time.Hour,
		MaxHistory: 50,
	}
}
