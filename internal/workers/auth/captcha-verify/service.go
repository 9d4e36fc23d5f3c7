// Package captchaverify issues sign-up challenges and checks the answers.
package captchaverify

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	idPrefix = "cap_"
	// no 0/O or 1/I, they read the same in a distorted image
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	fieldValue    = "value"
	fieldIP       = "clientIp"
	fieldAttempts = "attempts"
	fieldUsed     = "used"
)

const (
	ReasonSuccess        = "SUCCESS"
	ReasonInvalidFormat  = "INVALID_FORMAT"
	ReasonNotFound       = "NOT_FOUND"
	ReasonAlreadyUsed    = "ALREADY_USED"
	ReasonMaxAttempts    = "MAX_ATTEMPTS_EXCEEDED"
	ReasonIPMismatch     = "IP_MISMATCH"
	ReasonIncorrectValue = "INCORRECT_VALUE"
)

type Service struct {
	config *Config
	logger logger.Logger
	redis  *redis.Client
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		redis:  deps.Redis,
		now:    time.Now,
	}
}

// Issue stores a new challenge that expires after the configured window.
func (s *Service) Issue(ctx context.Context, clientIP string) (*Challenge, error) {
	if s.redis == nil {
		return nil, errors.New(errors.ErrCodeCacheError, "Redis client not configured", "captcha requires Redis", false)
	}
	value, err := randomCode(s.config.CodeLength)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInternal, "Failed to generate captcha", err.Error(), true)
	}
	challenge := &Challenge{
		ID:        idPrefix + uuid.New().String(),
		Value:     value,
		ExpiresAt: s.now().Add(s.config.Expiry).UTC(),
	}

	key := models.CaptchaKey(challenge.ID)
	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, key, fieldValue, value, fieldIP, clientIP, fieldAttempts, 0)
	pipe.Expire(ctx, key, s.config.Expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.NewCacheError(fmt.Errorf("store captcha: %w", err))
	}

	s.logger.Debug("captcha issued", map[string]interface{}{
		"captchaId": challenge.ID,
		"clientIp":  clientIP,
	})
	return challenge, nil
}

// Execute checks an answer. A wrong answer is a normal outcome reported in the
// output; only Redis failures come back as errors.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("executing captcha verification", map[string]interface{}{
		"captchaId": input.CaptchaID,
		"clientIp":  input.ClientIP,
	})

	if s.redis == nil {
		return nil, errors.New(errors.ErrCodeCacheError, "Redis client not configured", "captcha requires Redis", false)
	}
	if !strings.HasPrefix(input.CaptchaID, idPrefix) {
		return &Output{Message: "Invalid captcha ID format", Reason: ReasonInvalidFormat}, nil
	}

	key := models.CaptchaKey(input.CaptchaID)
	stored, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.NewCacheError(fmt.Errorf("load captcha: %w", err))
	}
	// expired challenges are dropped by their TTL
	if len(stored) == 0 {
		return &Output{Message: "Captcha not found or expired", Reason: ReasonNotFound}, nil
	}
	if stored[fieldUsed] != "" {
		return &Output{Message: "Captcha has already been used", Reason: ReasonAlreadyUsed}, nil
	}

	attempts, _ := strconv.Atoi(stored[fieldAttempts])
	if attempts >= s.config.MaxAttempts {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return nil, errors.NewCacheError(err)
		}
		return &Output{Message: "Maximum verification attempts exceeded", Reason: ReasonMaxAttempts}, nil
	}

	if s.config.VerifyClientIP && stored[fieldIP] != "" && stored[fieldIP] != input.ClientIP {
		remaining, err := s.recordFailure(ctx, key)
		if err != nil {
			return nil, err
		}
		return &Output{Message: "Client IP mismatch", Reason: ReasonIPMismatch, AttemptsRemaining: remaining}, nil
	}

	if !strings.EqualFold(strings.TrimSpace(input.CaptchaValue), stored[fieldValue]) {
		remaining, err := s.recordFailure(ctx, key)
		if err != nil {
			return nil, err
		}
		return &Output{Message: "Incorrect captcha value", Reason: ReasonIncorrectValue, AttemptsRemaining: remaining}, nil
	}

	// HSETNX lets exactly one of two concurrent correct answers through
	claimed, err := s.redis.HSetNX(ctx, key, fieldUsed, s.now().UTC().Format(time.RFC3339)).Result()
	if err != nil {
		return nil, errors.NewCacheError(err)
	}
	if !claimed {
		return &Output{Message: "Captcha has already been used", Reason: ReasonAlreadyUsed}, nil
	}

	s.logger.Info("captcha verification successful", map[string]interface{}{
		"captchaId": input.CaptchaID,
		"clientIp":  input.ClientIP,
	})
	return &Output{Valid: true, Message: "Captcha verified successfully", Reason: ReasonSuccess}, nil
}

// recordFailure counts a failed attempt and drops the challenge once none are left.
func (s *Service) recordFailure(ctx context.Context, key string) (int, error) {
	n, err := s.redis.HIncrBy(ctx, key, fieldAttempts, 1).Result()
	if err != nil {
		return 0, errors.NewCacheError(err)
	}
	remaining := s.config.MaxAttempts - int(n)
	if remaining <= 0 {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return 0, errors.NewCacheError(err)
		}
		return 0, nil
	}
	return remaining, nil
}

func randomCode(n int) (string, error) {
	size := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String(), nil
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
