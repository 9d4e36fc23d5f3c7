package registeruser

import (
	"context"
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/logger"
	captchaverify "job-portal-workers/internal/workers/auth/captcha-verify"
	"job-portal-workers/internal/workers/profile/profilestore"
)

type Input struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`

	CaptchaID    string `json:"captchaId,omitempty"`
	CaptchaValue string `json:"captchaValue,omitempty"`
	ClientIP     string `json:"clientIp,omitempty"`
}

type Output struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	SavedFields  []string  `json:"savedFields"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type ServiceDependencies struct {
	Keycloak auth.IdentityProvider
	Profiles ProfileSaver
	Captcha  CaptchaVerifier
	Logger   logger.Logger
}

// CaptchaVerifier checks the challenge answered on the sign-up form.
type CaptchaVerifier interface {
	Execute(ctx context.Context, input *captchaverify.Input) (*captchaverify.Output, error)
}

// ProfileSaver is the part of the profile store registration writes through.
type ProfileSaver interface {
	Save(ctx context.Context, flat map[string]interface{}, opts profilestore.SaveOptions) (*profilestore.SaveResult, error)
}
