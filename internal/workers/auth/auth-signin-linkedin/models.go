package authsigninlinkedin

import (
	"context"
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/workers/profile/profilestore"
)

type Input struct {
	AuthCode    string `json:"authCode"`
	RedirectURI string `json:"redirectUri,omitempty"`
	State       string `json:"state,omitempty"`
	// Role only applies when the sign-in creates the account.
	Role string `json:"role,omitempty"`
}

type Output struct {
	Success    bool      `json:"success"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Role       string    `json:"role"`
	LinkedInID string    `json:"linkedinId"`
	Token      string    `json:"token"`
	ExpiresIn  int       `json:"expiresIn,omitempty"`
	IsNewUser  bool      `json:"isNewUser"`
	SignedInAt time.Time `json:"signedInAt"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

type memberProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"localizedFirstName"`
	LastName  string `json:"localizedLastName"`
}

type emailResponse struct {
	Elements []struct {
		Handle struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"handle~"`
	} `json:"elements"`
}

type ServiceDependencies struct {
	Keycloak auth.IdentityProvider
	Profiles ProfileSaver
	Logger   logger.Logger
}

// ProfileSaver stores the profile row of a first-time LinkedIn user.
type ProfileSaver interface {
	Save(ctx context.Context, flat map[string]interface{}, opts profilestore.SaveOptions) (*profilestore.SaveResult, error)
}
