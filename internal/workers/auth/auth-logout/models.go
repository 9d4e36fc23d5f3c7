package authlogout

import (
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	UserID    string `json:"userId"`
	Token     string `json:"token,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	LogoutAll bool   `json:"logoutAll,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type Output struct {
	Success             bool      `json:"success"`
	Message             string    `json:"message"`
	SessionsInvalidated int       `json:"sessionsInvalidated"`
	TokenRevoked        bool      `json:"tokenRevoked"`
	IdentityLoggedOut   bool      `json:"identityLoggedOut"`
	LogoutAt            time.Time `json:"logoutAt"`
}

type ServiceDependencies struct {
	Redis    *redis.Client
	Keycloak auth.IdentityProvider
	Logger   logger.Logger
}
