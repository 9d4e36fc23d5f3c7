package authlogout

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, user *auth.User, password string) (string, error) {
	args := m.Called(ctx, user, password)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockIdentityProvider) AssignRealmRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockIdentityProvider) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockIdentityProvider) LogoutUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		ElementId:          "Activity_AuthLogout",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

// jwtWithExp signs a token with a key the service never sees.
func jwtWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"exp": exp.Unix(),
	}).SignedString([]byte("issuer-secret"))
	require.NoError(t, err)
	return token
}

func newTestService(t *testing.T, kc auth.IdentityProvider) (*Service, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := NewService(ServiceDependencies{Redis: rdb, Keycloak: kc, Logger: logger.NewTestLogger(t)}, DefaultConfig())
	return svc, mr
}

// ==========================
// Service Tests
// ==========================

func TestService_Execute_SingleSession(t *testing.T) {
	svc, mr := newTestService(t, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mr.Set(models.SessionKey("user-123", "s1"), "{}")
	mr.Set(models.SessionKey("user-123", "s2"), "{}")

	token := jwtWithExp(t, now.Add(15*time.Minute))
	out, err := svc.Execute(context.Background(), &Input{UserID: "user-123", SessionID: "s1", Token: token})
	require.NoError(t, err)

	assert.Equal(t, 1, out.SessionsInvalidated)
	assert.True(t, out.TokenRevoked)
	assert.False(t, mr.Exists(models.SessionKey("user-123", "s1")))
	assert.True(t, mr.Exists(models.SessionKey("user-123", "s2")))

	key := models.RevokedTokenKey(token)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 15*time.Minute, mr.TTL(key))
}

func TestService_Execute_LogoutAll(t *testing.T) {
	kc := &MockIdentityProvider{}
	kc.On("LogoutUser", mock.Anything, "user-123").Return(nil)

	svc, mr := newTestService(t, kc)
	svc.config.ScanCount = 2
	for i := 0; i < 5; i++ {
		mr.Set(models.SessionKey("user-123", fmt.Sprintf("s%d", i)), "{}")
	}
	mr.Set(models.SessionKey("user-999", "s0"), "{}")

	out, err := svc.Execute(context.Background(), &Input{UserID: "user-123", LogoutAll: true})
	require.NoError(t, err)

	assert.Equal(t, 5, out.SessionsInvalidated)
	assert.False(t, out.TokenRevoked)
	assert.True(t, out.IdentityLoggedOut)
	assert.True(t, mr.Exists(models.SessionKey("user-999", "s0")))
	kc.AssertExpectations(t)
}

func TestService_Execute_KeycloakFailureIsBestEffort(t *testing.T) {
	kc := &MockIdentityProvider{}
	kc.On("LogoutUser", mock.Anything, "user-123").Return(stderrors.New("keycloak down"))

	svc, _ := newTestService(t, kc)
	out, err := svc.Execute(context.Background(), &Input{UserID: "user-123", LogoutAll: true})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.IdentityLoggedOut)
}

func TestService_RevokeToken_TTL(t *testing.T) {
	svc, mr := newTestService(t, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	t.Run("opaque token uses default ttl", func(t *testing.T) {
		revoked, err := svc.revokeToken(context.Background(), "opaque-token-value")
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.Equal(t, time.Hour, mr.TTL(models.RevokedTokenKey("opaque-token-value")))
	})

	t.Run("expired token is skipped", func(t *testing.T) {
		token := jwtWithExp(t, now.Add(-time.Minute))
		revoked, err := svc.revokeToken(context.Background(), token)
		require.NoError(t, err)
		assert.False(t, revoked)
		assert.False(t, mr.Exists(models.RevokedTokenKey(token)))
	})

	t.Run("token without exp uses default ttl", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-123"}).
			SignedString([]byte("issuer-secret"))
		require.NoError(t, err)
		revoked, err := svc.revokeToken(context.Background(), token)
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.Equal(t, time.Hour, mr.TTL(models.RevokedTokenKey(token)))
	})
}

func TestService_Execute_ExpiredTokenNotReportedRevoked(t *testing.T) {
	svc, mr := newTestService(t, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	token := jwtWithExp(t, now.Add(-5*time.Minute))
	out, err := svc.Execute(context.Background(), &Input{UserID: "user-123", SessionID: "s1", Token: token})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.TokenRevoked)
	assert.False(t, mr.Exists(models.RevokedTokenKey(token)))
}

func TestService_Execute_RedisError(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectDel(models.SessionKey("user-123", "s1")).SetErr(stderrors.New("connection refused"))

	svc := NewService(ServiceDependencies{Redis: rdb, Logger: logger.NewTestLogger(t)}, DefaultConfig())
	_, err := svc.Execute(context.Background(), &Input{UserID: "user-123", SessionID: "s1"})
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeCacheError, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestService_Execute_NoRedis(t *testing.T) {
	svc := NewService(ServiceDependencies{Logger: logger.NewTestLogger(t)}, DefaultConfig())
	_, err := svc.Execute(context.Background(), &Input{UserID: "user-123"})
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.False(t, stdErr.Retryable)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig(), Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	tests := []struct {
		name    string
		vars    map[string]interface{}
		wantErr bool
	}{
		{"single session", map[string]interface{}{"userId": "user-123", "sessionId": "s1"}, false},
		{"logout all", map[string]interface{}{"userId": "user-123", "logoutAll": true}, false},
		{"missing user", map[string]interface{}{"sessionId": "s1"}, true},
		{"short user", map[string]interface{}{"userId": "u1"}, true},
		{"token too short", map[string]interface{}{"userId": "user-123", "token": "abc"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(1, tt.vars))
			if tt.wantErr {
				var stdErr *errors.StandardError
				require.True(t, stderrors.As(err, &stdErr))
				assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-123", input.UserID)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DefaultTokenTTL = 0
	assert.Error(t, cfg.Validate())

	_, err := NewHandler(HandlerOptions{CustomConfig: &Config{Timeout: time.Second}})
	assert.Error(t, err)
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	app := &config.Config{
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: false, MaxJobsActive: 9, Timeout: 2500},
		},
		Auth: config.AuthConfig{SessionTTL: 1800},
	}

	cfg := createConfigFromAppConfig(app, nil)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 9, cfg.MaxJobsActive)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.DefaultTokenTTL)
	assert.False(t, cfg.KeycloakLogout)
}
