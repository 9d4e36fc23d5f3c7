// internal/common/auth/keycloak.go
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/errors"
	httpclient "job-portal-workers/internal/common/http"
)

// IdentityProvider is what the auth workers need from Keycloak.
type IdentityProvider interface {
	CreateUser(ctx context.Context, user *User, password string) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	AssignRealmRole(ctx context.Context, userID, role string) error
	DeleteUser(ctx context.Context, userID string) error
	LogoutUser(ctx context.Context, userID string) error
}

// KeycloakClient talks to the Keycloak admin REST API with a client-credentials token.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	http         *httpclient.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type User struct {
	ID            string              `json:"id,omitempty"`
	Email         string              `json:"email"`
	FirstName     string              `json:"firstName,omitempty"`
	LastName      string              `json:"lastName,omitempty"`
	Username      string              `json:"username"`
	Enabled       bool                `json:"enabled"`
	EmailVerified bool                `json:"emailVerified"`
	Attributes    map[string][]string `json:"attributes,omitempty"`
	Credentials   []Credential        `json:"credentials,omitempty"`
}

type Credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string, timeout time.Duration) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpclient.NewClient(timeout),
	}
}

func NewKeycloakClientFromConfig(cfg config.KeycloakConfig) *KeycloakClient {
	return NewKeycloakClient(cfg.URL, cfg.Realm, cfg.ClientID, cfg.ClientSecret, config.GetDuration(cfg.Timeout))
}

// token returns a cached service-account token, refreshing it 30s before expiry.
func (k *KeycloakClient) token(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.accessToken != "" && time.Now().Add(30*time.Second).Before(k.tokenExpiry) {
		return k.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", k.clientID)
	form.Set("client_secret", k.clientSecret)

	var tokenResp TokenResponse
	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)
	if _, err := k.http.DoForm(ctx, tokenURL, form, &tokenResp); err != nil {
		return "", k.mapError("token", err)
	}

	k.accessToken = tokenResp.AccessToken
	k.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return k.accessToken, nil
}

func (k *KeycloakClient) admin(ctx context.Context, method, path string, body, out interface{}) (*http.Response, error) {
	tok, err := k.token(ctx)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/admin/realms/%s%s", k.baseURL, k.realm, path)
	return k.http.DoJSON(ctx, method, endpoint, map[string]string{"Authorization": "Bearer " + tok}, body, out)
}

// CreateUser creates an enabled user with a non-temporary password and returns its id.
func (k *KeycloakClient) CreateUser(ctx context.Context, user *User, password string) (string, error) {
	if user.Username == "" {
		user.Username = user.Email
	}
	user.Enabled = true
	if password != "" {
		user.Credentials = []Credential{{Type: "password", Value: password}}
	}

	resp, err := k.admin(ctx, http.MethodPost, "/users", user, nil)
	if err != nil {
		var statusErr *httpclient.StatusError
		if stderrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
			return "", errors.NewUserAlreadyExistsError(user.Email)
		}
		return "", k.mapError("create user", err)
	}

	// 201 Created carries the new id in the Location header.
	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.NewIdentityProviderError(fmt.Errorf("create user: missing Location header"))
	}
	parts := strings.Split(location, "/")
	user.ID = parts[len(parts)-1]
	return user.ID, nil
}

// FindUserByEmail returns the user registered under email, or nil when there is none.
func (k *KeycloakClient) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("exact", "true")

	var users []User
	if _, err := k.admin(ctx, http.MethodGet, "/users?"+query.Encode(), nil, &users); err != nil {
		return nil, k.mapError("find user", err)
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// AssignRealmRole maps an existing realm role onto the user.
func (k *KeycloakClient) AssignRealmRole(ctx context.Context, userID, roleName string) error {
	var role Role
	if _, err := k.admin(ctx, http.MethodGet, "/roles/"+url.PathEscape(roleName), nil, &role); err != nil {
		var statusErr *httpclient.StatusError
		if stderrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return errors.NewUnknownRoleError(roleName)
		}
		return k.mapError("get role", err)
	}

	path := fmt.Sprintf("/users/%s/role-mappings/realm", url.PathEscape(userID))
	if _, err := k.admin(ctx, http.MethodPost, path, []Role{role}, nil); err != nil {
		return k.mapError("assign role", err)
	}
	return nil
}

func (k *KeycloakClient) DeleteUser(ctx context.Context, userID string) error {
	if _, err := k.admin(ctx, http.MethodDelete, "/users/"+url.PathEscape(userID), nil, nil); err != nil {
		return k.mapError("delete user", err)
	}
	return nil
}

// LogoutUser ends every Keycloak session the user holds.
func (k *KeycloakClient) LogoutUser(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/users/%s/logout", url.PathEscape(userID))
	if _, err := k.admin(ctx, http.MethodPost, path, nil, nil); err != nil {
		return k.mapError("logout user", err)
	}
	return nil
}

func (k *KeycloakClient) mapError(op string, err error) error {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) && !statusErr.Transient() {
		e := errors.NewIdentityProviderError(fmt.Errorf("%s: %w", op, err))
		e.Retryable = false
		return e
	}
	return errors.NewIdentityProviderError(fmt.Errorf("%s: %w", op, err))
}
