package captchaverify

import (
	"time"

	"job-portal-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	CaptchaID    string `json:"captchaId"`
	CaptchaValue string `json:"captchaValue"`
	ClientIP     string `json:"clientIp,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
}

type Output struct {
	Valid             bool   `json:"valid"`
	Message           string `json:"message"`
	Reason            string `json:"reason,omitempty"`
	AttemptsRemaining int    `json:"attemptsRemaining,omitempty"`
}

// Challenge is a freshly issued captcha. Value is rendered to the user and
// never sent back to the browser as text.
type Challenge struct {
	ID        string    `json:"captchaId"`
	Value     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ServiceDependencies struct {
	Redis  *redis.Client
	Logger logger.Logger
}
