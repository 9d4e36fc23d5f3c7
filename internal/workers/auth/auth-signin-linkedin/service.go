// Package authsigninlinkedin signs portal users in with a LinkedIn authorization code.
// First-time members get a Keycloak identity and a profile row.
package authsigninlinkedin

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/errors"
	httpclient "job-portal-workers/internal/common/http"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/models"
	"job-portal-workers/internal/workers/profile/profilestore"
)

const (
	profilePath = "/v2/me"
	emailPath   = "/v2/emailAddress?q=members&projection=(elements*(handle~))"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	keycloak auth.IdentityProvider
	profiles ProfileSaver
	http     *httpclient.Client
	now      func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		keycloak: deps.Keycloak,
		profiles: deps.Profiles,
		http:     httpclient.NewClient(config.Timeout),
		now:      time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.config.configured() {
		return nil, errors.NewBusinessRuleError("LinkedIn sign-in is not configured", "client_id and client_secret are empty")
	}
	role, err := s.resolveRole(input.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("executing LinkedIn sign-in", map[string]interface{}{
		"hasRedirectURI": input.RedirectURI != "",
		"hasState":       input.State != "",
	})

	tokens, err := s.exchangeCode(ctx, input.AuthCode, input.RedirectURI)
	if err != nil {
		return nil, err
	}

	var member memberProfile
	if err := s.get(ctx, tokens.AccessToken, profilePath, &member); err != nil {
		return nil, apiError("fetch profile", err)
	}
	var emails emailResponse
	if err := s.get(ctx, tokens.AccessToken, emailPath, &emails); err != nil {
		return nil, apiError("fetch email", err)
	}
	email := primaryEmail(emails)
	if email == "" {
		return nil, errors.NewValidationError("LinkedIn account has no email address")
	}

	out := &Output{
		Success:    true,
		Email:      email,
		FirstName:  member.FirstName,
		LastName:   member.LastName,
		LinkedInID: member.ID,
		Token:      tokens.AccessToken,
		ExpiresIn:  tokens.ExpiresIn,
	}

	existing, err := s.keycloak.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing, out.IsNewUser, err = s.createUser(ctx, email, role, &member)
		if err != nil {
			return nil, err
		}
	}

	out.UserID = existing.ID
	out.Role = string(role)
	if roles := existing.Attributes["portalRole"]; len(roles) > 0 {
		out.Role = roles[0]
	}
	if existing.FirstName != "" {
		out.FirstName, out.LastName = existing.FirstName, existing.LastName
	}
	out.SignedInAt = s.now().UTC()

	s.logger.Info("LinkedIn sign-in completed", map[string]interface{}{
		"userId":    out.UserID,
		"role":      out.Role,
		"isNewUser": out.IsNewUser,
	})
	return out, nil
}

func (s *Service) resolveRole(raw string) (models.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return s.config.DefaultRole, nil
	}
	role, ok := models.ParseRole(raw)
	if !ok {
		return "", errors.NewUnknownRoleError(raw)
	}
	if !s.config.allowsRole(role) {
		return "", errors.NewNotAuthorizedError(fmt.Sprintf("role %s cannot be self-registered", role))
	}
	return role, nil
}

// exchangeCode trades the authorization code for a member access token. A code
// LinkedIn rejects stays rejected, so 4xx answers are not retried.
func (s *Service) exchangeCode(ctx context.Context, code, redirectURI string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", s.config.ClientID)
	form.Set("client_secret", s.config.ClientSecret)
	form.Set("redirect_uri", redirectURI)

	var tokens tokenResponse
	if _, err := s.http.DoForm(ctx, s.config.TokenURL, form, &tokens); err != nil {
		var statusErr *httpclient.StatusError
		if stderrors.As(err, &statusErr) && !statusErr.Transient() {
			return nil, errors.New(errors.ErrCodeLinkedInOAuth, "LinkedIn rejected the authorization code", err.Error(), false)
		}
		return nil, apiError("exchange code", err)
	}
	if tokens.AccessToken == "" {
		return nil, errors.New(errors.ErrCodeLinkedInOAuth, "LinkedIn returned no access token", "empty access_token", false)
	}
	return &tokens, nil
}

func (s *Service) get(ctx context.Context, token, path string, out interface{}) error {
	endpoint := strings.TrimSuffix(s.config.APIURL, "/") + path
	_, err := s.http.DoJSON(ctx, http.MethodGet, endpoint, map[string]string{"Authorization": "Bearer " + token}, nil, out)
	return err
}

// createUser registers a first-time member. When another sign-in for the same
// email wins the race, the winner's identity is returned with created=false.
func (s *Service) createUser(ctx context.Context, email string, role models.Role, member *memberProfile) (*auth.User, bool, error) {
	user := &auth.User{
		Email:         email,
		Username:      email,
		FirstName:     member.FirstName,
		LastName:      member.LastName,
		EmailVerified: true,
		Attributes: map[string][]string{
			"portalRole": {string(role)},
			"linkedinId": {member.ID},
		},
	}
	userID, err := s.keycloak.CreateUser(ctx, user, "")
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) && stdErr.Code == errors.ErrCodeUserAlreadyExists {
			winner, findErr := s.keycloak.FindUserByEmail(ctx, email)
			if findErr != nil {
				return nil, false, findErr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	user.ID = userID

	if err := s.keycloak.AssignRealmRole(ctx, userID, string(role)); err != nil {
		s.rollback(ctx, userID, "assign role")
		return nil, false, err
	}

	profile := map[string]interface{}{
		"id":       userID,
		"email":    email,
		"fullName": strings.TrimSpace(member.FirstName + " " + member.LastName),
		"role":     string(role),
	}
	if _, err := s.profiles.Save(ctx, profile, profilestore.SaveOptions{EnsureRoleRow: true}); err != nil {
		s.rollback(ctx, userID, "save profile")
		if stderrors.Is(err, profilestore.ErrValidationFailed) {
			return nil, false, errors.NewValidationError(err.Error())
		}
		return nil, false, errors.NewProfileSaveFailedError(err)
	}

	s.logger.Info("created user from LinkedIn profile", map[string]interface{}{
		"userId": userID,
		"role":   role,
	})
	return user, true, nil
}

// rollback removes the half-created identity so the next sign-in starts clean.
func (s *Service) rollback(ctx context.Context, userID, step string) {
	if err := s.keycloak.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("failed to roll back keycloak user", map[string]interface{}{
			"userId": userID,
			"step":   step,
			"error":  err.Error(),
		})
	}
}

func primaryEmail(resp emailResponse) string {
	for _, el := range resp.Elements {
		if addr := strings.ToLower(strings.TrimSpace(el.Handle.EmailAddress)); addr != "" {
			return addr
		}
	}
	return ""
}

func apiError(op string, err error) *errors.StandardError {
	retryable := true
	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) {
		retryable = statusErr.Transient()
	}
	return errors.New(errors.ErrCodeLinkedInAPI, "LinkedIn API request failed", fmt.Sprintf("%s: %v", op, err), retryable)
}
