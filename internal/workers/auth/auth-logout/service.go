// Package authlogout ends portal sessions and denylists access tokens.
package authlogout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	redis    *redis.Client
	keycloak auth.IdentityProvider
	now      func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		redis:    deps.Redis,
		keycloak: deps.Keycloak,
		now:      time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("executing auth logout", map[string]interface{}{
		"userId":    input.UserID,
		"sessionId": input.SessionID,
		"logoutAll": input.LogoutAll,
		"reason":    input.Reason,
	})

	if s.redis == nil {
		return nil, errors.New(errors.ErrCodeCacheError, "Redis client not configured", "session management requires Redis", false)
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, errors.NewValidationError("userId is required")
	}

	var invalidated int
	var err error
	switch {
	case input.LogoutAll:
		invalidated, err = s.invalidateAllSessions(ctx, input.UserID)
	case input.SessionID != "":
		invalidated, err = s.invalidateSession(ctx, input.UserID, input.SessionID)
	}
	if err != nil {
		return nil, errors.NewCacheError(err).WithMetadata("userId", input.UserID)
	}

	tokenRevoked := false
	if input.Token != "" {
		tokenRevoked, err = s.revokeToken(ctx, input.Token)
		if err != nil {
			return nil, errors.NewCacheError(err)
		}
	}

	// the portal session is already gone, so a Keycloak failure only gets logged
	identityLoggedOut := false
	if s.config.KeycloakLogout && s.keycloak != nil && (input.LogoutAll || input.SessionID == "") {
		if err := s.keycloak.LogoutUser(ctx, input.UserID); err != nil {
			s.logger.Warn("keycloak logout failed", map[string]interface{}{
				"userId": input.UserID,
				"error":  err.Error(),
			})
		} else {
			identityLoggedOut = true
		}
	}

	s.logger.Info("auth logout completed", map[string]interface{}{
		"userId":              input.UserID,
		"sessionsInvalidated": invalidated,
		"tokenRevoked":        tokenRevoked,
	})

	return &Output{
		Success:             true,
		Message:             "Logout successful",
		SessionsInvalidated: invalidated,
		TokenRevoked:        tokenRevoked,
		IdentityLoggedOut:   identityLoggedOut,
		LogoutAt:            s.now().UTC(),
	}, nil
}

func (s *Service) invalidateSession(ctx context.Context, userID, sessionID string) (int, error) {
	n, err := s.redis.Del(ctx, models.SessionKey(userID, sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}
	return int(n), nil
}

// invalidateAllSessions walks the keyspace with SCAN so a large instance is never blocked by KEYS.
func (s *Service) invalidateAllSessions(ctx context.Context, userID string) (int, error) {
	pattern := models.SessionPattern(userID)
	var cursor uint64
	total := 0
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, s.config.ScanCount).Result()
		if err != nil {
			return total, fmt.Errorf("scan sessions: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.redis.Del(ctx, keys...).Result()
			if err != nil {
				return total, fmt.Errorf("delete sessions: %w", err)
			}
			total += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return total, nil
}

// revokeToken denylists token until it expires. It reports false for a token
// that is already past its exp claim.
func (s *Service) revokeToken(ctx context.Context, token string) (bool, error) {
	ttl := s.config.DefaultTokenTTL
	if exp, ok := tokenExpiry(token); ok {
		ttl = exp.Sub(s.now())
		if ttl <= 0 {
			return false, nil
		}
	}
	if err := s.redis.Set(ctx, models.RevokedTokenKey(token), "1", ttl).Err(); err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return true, nil
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
// Opaque tokens report false.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Service) TestConnection(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis client not configured")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}
