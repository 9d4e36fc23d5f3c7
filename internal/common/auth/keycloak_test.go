package auth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"job-portal-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeycloakServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/portal/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "svc-token", ExpiresIn: 300})
	})
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func TestKeycloakClient_CreateUser(t *testing.T) {
	srv, tokenCalls := newKeycloakServer(t, map[string]http.HandlerFunc{
		"/admin/realms/portal/users": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
			var u User
			require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
			if u.Email == "taken@portal.io" {
				w.WriteHeader(http.StatusConflict)
				return
			}
			assert.Equal(t, u.Email, u.Username)
			assert.True(t, u.Enabled)
			require.Len(t, u.Credentials, 1)
			assert.Equal(t, "password", u.Credentials[0].Type)
			w.Header().Set("Location", "http://kc/admin/realms/portal/users/kc-123")
			w.WriteHeader(http.StatusCreated)
		},
	})

	kc := NewKeycloakClient(srv.URL, "portal", "workers", "secret", 5*time.Second)

	id, err := kc.CreateUser(context.Background(), &User{Email: "ana@portal.io"}, "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "kc-123", id)

	_, err = kc.CreateUser(context.Background(), &User{Email: "taken@portal.io"}, "x")
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeUserAlreadyExists, stdErr.Code)

	assert.Equal(t, 1, *tokenCalls, "token is cached between calls")
}

func TestKeycloakClient_AssignRealmRole(t *testing.T) {
	var mapped []Role
	srv, _ := newKeycloakServer(t, map[string]http.HandlerFunc{
		"/admin/realms/portal/roles/employer": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(Role{ID: "r-1", Name: "employer"})
		},
		"/admin/realms/portal/roles/wizard": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"/admin/realms/portal/users/kc-1/role-mappings/realm": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&mapped))
			w.WriteHeader(http.StatusNoContent)
		},
	})

	kc := NewKeycloakClient(srv.URL, "portal", "workers", "secret", 5*time.Second)

	require.NoError(t, kc.AssignRealmRole(context.Background(), "kc-1", "employer"))
	require.Len(t, mapped, 1)
	assert.Equal(t, "employer", mapped[0].Name)

	err := kc.AssignRealmRole(context.Background(), "kc-1", "wizard")
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeUnknownRole, stdErr.Code)
}

func TestKeycloakClient_FindUserByEmail(t *testing.T) {
	srv, _ := newKeycloakServer(t, map[string]http.HandlerFunc{
		"/admin/realms/portal/users": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "true", r.URL.Query().Get("exact"))
			if r.URL.Query().Get("email") == "ana@portal.io" {
				_ = json.NewEncoder(w).Encode([]User{{ID: "kc-7", Email: "Ana@portal.io", FirstName: "Ana"}})
				return
			}
			_ = json.NewEncoder(w).Encode([]User{})
		},
	})
	kc := NewKeycloakClient(srv.URL, "portal", "workers", "secret", 5*time.Second)

	u, err := kc.FindUserByEmail(context.Background(), "ana@portal.io")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "kc-7", u.ID)

	u, err = kc.FindUserByEmail(context.Background(), "nobody@portal.io")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestKeycloakClient_LogoutUser_ServerError(t *testing.T) {
	srv, _ := newKeycloakServer(t, map[string]http.HandlerFunc{
		"/admin/realms/portal/users/kc-1/logout": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"/admin/realms/portal/users/kc-2/logout": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		},
	})
	kc := NewKeycloakClient(srv.URL, "portal", "workers", "secret", 5*time.Second)

	err := kc.LogoutUser(context.Background(), "kc-1")
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeIdentityProviderError, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	err = kc.LogoutUser(context.Background(), "kc-2")
	require.True(t, stderrors.As(err, &stdErr))
	assert.False(t, stdErr.Retryable)
}
