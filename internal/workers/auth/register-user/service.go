// Package registeruser creates a portal identity in Keycloak and its profile rows.
package registeruser

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/models"
	captchaverify "job-portal-workers/internal/workers/auth/captcha-verify"
	"job-portal-workers/internal/workers/profile/profilestore"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	keycloak auth.IdentityProvider
	profiles ProfileSaver
	captcha  CaptchaVerifier
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		keycloak: deps.Keycloak,
		profiles: deps.Profiles,
		captcha:  deps.Captcha,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	role, ok := models.ParseRole(input.Role)
	if !ok {
		return nil, errors.NewUnknownRoleError(input.Role)
	}
	if !s.config.allowsRole(role) {
		return nil, errors.NewNotAuthorizedError(fmt.Sprintf("role %s cannot be self-registered", role))
	}
	if len(input.Password) < s.config.MinPasswordLen {
		return nil, errors.NewValidationError(fmt.Sprintf("password must be at least %d characters", s.config.MinPasswordLen))
	}

	if s.config.RequireCaptcha {
		if err := s.checkCaptcha(ctx, input); err != nil {
			return nil, err
		}
	}

	s.logger.Info("registering user", map[string]interface{}{"email": email, "role": role})

	first, last := splitName(input.FullName)
	userID, err := s.keycloak.CreateUser(ctx, &auth.User{
		Email:     email,
		Username:  email,
		FirstName: first,
		LastName:  last,
		Attributes: map[string][]string{
			"portalRole": {string(role)},
		},
	}, input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.keycloak.AssignRealmRole(ctx, userID, string(role)); err != nil {
		s.rollback(ctx, userID, "assign role")
		return nil, err
	}

	profile := map[string]interface{}{
		"id":       userID,
		"email":    email,
		"fullName": strings.TrimSpace(input.FullName),
		"role":     string(role),
	}
	if input.Phone != "" {
		profile["phone"] = input.Phone
	}

	result, err := s.profiles.Save(ctx, profile, profilestore.SaveOptions{EnsureRoleRow: true})
	if err != nil {
		s.rollback(ctx, userID, "save profile")
		return nil, mapProfileError(err)
	}

	s.logger.Info("user registered", map[string]interface{}{
		"userId": userID,
		"role":   role,
	})

	return &Output{
		UserID:       userID,
		Email:        email,
		Role:         string(role),
		SavedFields:  result.SavedFields,
		RegisteredAt: time.Now().UTC(),
	}, nil
}

// checkCaptcha runs before any identity exists, so a failed answer leaves nothing to roll back.
func (s *Service) checkCaptcha(ctx context.Context, input *Input) error {
	if input.CaptchaID == "" || input.CaptchaValue == "" {
		return errors.New(errors.ErrCodeCaptchaInvalid, "Captcha required", "captchaId and captchaValue are required", false)
	}
	if s.captcha == nil {
		return errors.New(errors.ErrCodeInternal, "Captcha verifier not configured", "register-user requires captcha-verify", false)
	}
	out, err := s.captcha.Execute(ctx, &captchaverify.Input{
		CaptchaID:    input.CaptchaID,
		CaptchaValue: input.CaptchaValue,
		ClientIP:     input.ClientIP,
	})
	if err != nil {
		return err
	}
	if !out.Valid {
		return errors.New(errors.ErrCodeCaptchaInvalid, "Captcha verification failed", out.Reason, false).
			WithMetadata("attemptsRemaining", out.AttemptsRemaining)
	}
	return nil
}

// rollback removes the half-created identity so the same email can register again.
func (s *Service) rollback(ctx context.Context, userID, step string) {
	if err := s.keycloak.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("failed to roll back keycloak user", map[string]interface{}{
			"userId": userID,
			"step":   step,
			"error":  err.Error(),
		})
	}
}

func mapProfileError(err error) error {
	switch {
	case stderrors.Is(err, profilestore.ErrRoleChangeNotAllowed):
		return errors.New(errors.ErrCodeRoleChangeNotAllowed, "Profile already exists with another role", err.Error(), false)
	case stderrors.Is(err, profilestore.ErrValidationFailed):
		return errors.NewValidationError(err.Error())
	case stderrors.Is(err, models.ErrUnknownRole):
		return errors.NewUnknownRoleError(err.Error())
	default:
		return errors.NewProfileSaveFailedError(err)
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
