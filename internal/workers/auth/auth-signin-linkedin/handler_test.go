package authsigninlinkedin

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/models"
	"job-portal-workers/internal/workers/profile/profilestore"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type MockProfileSaver struct {
	mock.Mock
}

func (m *MockProfileSaver) Save(ctx context.Context, flat map[string]interface{}, opts profilestore.SaveOptions) (*profilestore.SaveResult, error) {
	args := m.Called(ctx, flat, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profilestore.SaveResult), args.Error(1)
}

// linkedInServer fakes the token endpoint and the member API.
type linkedInServer struct {
	*httptest.Server
	tokenStatus   int
	profileStatus int
	email         string
	tokenForm     map[string]string
	bearer        string
}

func newLinkedInServer(t *testing.T) *linkedInServer {
	t.Helper()
	li := &linkedInServer{tokenStatus: http.StatusOK, profileStatus: http.StatusOK, email: "Ana@Portal.io"}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v2/accessToken", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		li.tokenForm = map[string]string{}
		for k := range r.PostForm {
			li.tokenForm[k] = r.PostForm.Get(k)
		}
		if li.tokenStatus != http.StatusOK {
			w.WriteHeader(li.tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "li-access", "expires_in": 5184000})
	})
	mux.HandleFunc("/v2/me", func(w http.ResponseWriter, r *http.Request) {
		li.bearer = r.Header.Get("Authorization")
		if li.profileStatus != http.StatusOK {
			w.WriteHeader(li.profileStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id": "li-42", "localizedFirstName": "Ana", "localizedLastName": "Lima",
		})
	})
	mux.HandleFunc("/v2/emailAddress", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "members", r.URL.Query().Get("q"))
		elements := []map[string]interface{}{}
		if li.email != "" {
			elements = append(elements, map[string]interface{}{
				"handle~": map[string]string{"emailAddress": li.email},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"elements": elements})
	})
	li.Server = httptest.NewServer(mux)
	t.Cleanup(li.Close)
	return li
}

func testConfig(li *linkedInServer) *Config {
	cfg := DefaultConfig()
	cfg.Timeout = 5 * time.Second
	cfg.ClientID = "li-app"
	cfg.ClientSecret = "li-secret"
	cfg.TokenURL = li.URL + "/oauth/v2/accessToken"
	cfg.APIURL = li.URL
	return cfg
}

func newService(t *testing.T, cfg *Config, kc *MockIdentityProvider, ps *MockProfileSaver) *Service {
	svc := NewService(ServiceDependencies{Keycloak: kc, Profiles: ps, Logger: logger.NewTestLogger(t)}, cfg)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validInput() *Input {
	return &Input{AuthCode: "AQT-linkedin-code-123", RedirectURI: "https://portal.example/auth/linkedin", State: "xyz"}
}

func standardError(t *testing.T, err error) *errors.StandardError {
	t.Helper()
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "want StandardError, got %v", err)
	return stdErr
}

func TestService_Execute_NewUser(t *testing.T) {
	li := newLinkedInServer(t)
	kc := &MockIdentityProvider{}
	kc.On("FindUserByEmail", mock.Anything, "ana@portal.io").Return(nil, nil)
	kc.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
		return u.Email == "ana@portal.io" && u.EmailVerified &&
			u.Attributes["linkedinId"][0] == "li-42" && u.Attributes["portalRole"][0] == "candidate"
	}), "").Return("kc-1", nil)
	kc.On("AssignRealmRole", mock.Anything, "kc-1", "candidate").Return(nil)

	ps := &MockProfileSaver{}
	ps.On("Save", mock.Anything, map[string]interface{}{
		"id": "kc-1", "email": "ana@portal.io", "fullName": "Ana Lima", "role": "candidate",
	}, profilestore.SaveOptions{EnsureRoleRow: true}).Return(&profilestore.SaveResult{}, nil)

	out, err := newService(t, testConfig(li), kc, ps).Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.True(t, out.IsNewUser)
	assert.Equal(t, "kc-1", out.UserID)
	assert.Equal(t, "candidate", out.Role)
	assert.Equal(t, "li-42", out.LinkedInID)
	assert.Equal(t, "li-access", out.Token)
	assert.Equal(t, 5184000, out.ExpiresIn)

	assert.Equal(t, "authorization_code", li.tokenForm["grant_type"])
	assert.Equal(t, "AQT-linkedin-code-123", li.tokenForm["code"])
	assert.Equal(t, "li-app", li.tokenForm["client_id"])
	assert.Equal(t, "https://portal.example/auth/linkedin", li.tokenForm["redirect_uri"])
	assert.Equal(t, "Bearer li-access", li.bearer)
	kc.AssertExpectations(t)
	ps.AssertExpectations(t)
}

func TestService_Execute_ExistingUserKeepsRole(t *testing.T) {
	li := newLinkedInServer(t)
	kc := &MockIdentityProvider{}
	kc.On("FindUserByEmail", mock.Anything, "ana@portal.io").Return(&auth.User{
		ID: "kc-9", Email: "ana@portal.io", FirstName: "Ana", LastName: "Lima Souza",
		Attributes: map[string][]string{"portalRole": {"employer"}},
	}, nil)

	input := validInput()
	input.Role = "student"
	out, err := newService(t, testConfig(li), kc, &MockProfileSaver{}).Execute(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, out.IsNewUser)
	assert.Equal(t, "kc-9", out.UserID)
	assert.Equal(t, "employer", out.Role)
	assert.Equal(t, "Lima Souza", out.LastName)
	kc.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Execute_ConcurrentSignInReusesWinner(t *testing.T) {
	li := newLinkedInServer(t)
	kc := &MockIdentityProvider{}
	kc.On("FindUserByEmail", mock.Anything, "ana@portal.io").Return(nil, nil).Once()
	kc.On("CreateUser", mock.Anything, mock.Anything, "").Return("", errors.NewUserAlreadyExistsError("ana@portal.io"))
	kc.On("FindUserByEmail", mock.Anything, "ana@portal.io").Return(&auth.User{
		ID: "kc-winner", Email: "ana@portal.io",
		Attributes: map[string][]string{"portalRole": {"candidate"}},
	}, nil).Once()

	out, err := newService(t, testConfig(li), kc, &MockProfileSaver{}).Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "kc-winner", out.UserID)
	assert.False(t, out.IsNewUser)
	kc.AssertNotCalled(t, "AssignRealmRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Execute_RollsBackOnProfileFailure(t *testing.T) {
	li := newLinkedInServer(t)
	kc := &MockIdentityProvider{}
	kc.On("FindUserByEmail", mock.Anything, "ana@portal.io").Return(nil, nil)
	kc.On("CreateUser", mock.Anything, mock.Anything, "").Return("kc-2", nil)
	kc.On("AssignRealmRole", mock.Anything, "kc-2", "candidate").Return(nil)
	kc.On("DeleteUser", mock.Anything, "kc-2").Return(nil)

	ps := &MockProfileSaver{}
	ps.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil, stderrors.New("connection reset"))

	_, err := newService(t, testConfig(li), kc, ps).Execute(context.Background(), validInput())
	assert.Equal(t, errors.ErrCodeProfileSaveFailed, standardError(t, err).Code)
	kc.AssertCalled(t, "DeleteUser", mock.Anything, "kc-2")
}

func TestService_Execute_LinkedInFailures(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(li *linkedInServer)
		wantCode      errors.ErrorCode
		wantRetryable bool
	}{
		{
			name:     "rejected code",
			setup:    func(li *linkedInServer) { li.tokenStatus = http.StatusBadRequest },
			wantCode: errors.ErrCodeLinkedInOAuth,
		},
		{
			name:          "token endpoint down",
			setup:         func(li *linkedInServer) { li.tokenStatus = http.StatusServiceUnavailable },
			wantCode:      errors.ErrCodeLinkedInAPI,
			wantRetryable: true,
		},
		{
			name:          "profile unavailable",
			setup:         func(li *linkedInServer) { li.profileStatus = http.StatusBadGateway },
			wantCode:      errors.ErrCodeLinkedInAPI,
			wantRetryable: true,
		},
		{
			name:     "profile forbidden",
			setup:    func(li *linkedInServer) { li.profileStatus = http.StatusForbidden },
			wantCode: errors.ErrCodeLinkedInAPI,
		},
		{
			name:     "no email",
			setup:    func(li *linkedInServer) { li.email = "" },
			wantCode: errors.ErrCodeValidationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			li := newLinkedInServer(t)
			tt.setup(li)
			kc := &MockIdentityProvider{}

			_, err := newService(t, testConfig(li), kc, &MockProfileSaver{}).Execute(context.Background(), validInput())
			stdErr := standardError(t, err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
			kc.AssertNotCalled(t, "FindUserByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Execute_RejectedBeforeCallingLinkedIn(t *testing.T) {
	li := newLinkedInServer(t)

	t.Run("staff role", func(t *testing.T) {
		input := validInput()
		input.Role = "admin"
		_, err := newService(t, testConfig(li), &MockIdentityProvider{}, &MockProfileSaver{}).Execute(context.Background(), input)
		assert.Equal(t, errors.ErrCodeNotAuthorized, standardError(t, err).Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		input := validInput()
		input.Role = "wizard"
		_, err := newService(t, testConfig(li), &MockIdentityProvider{}, &MockProfileSaver{}).Execute(context.Background(), input)
		assert.Equal(t, errors.ErrCodeUnknownRole, standardError(t, err).Code)
	})

	t.Run("no app credentials", func(t *testing.T) {
		cfg := testConfig(li)
		cfg.ClientSecret = ""
		_, err := newService(t, cfg, &MockIdentityProvider{}, &MockProfileSaver{}).Execute(context.Background(), validInput())
		assert.Equal(t, errors.ErrCodeBusinessRule, standardError(t, err).Code)
	})

	assert.Nil(t, li.tokenForm)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		ElementId:          "Activity_LinkedInSignin",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func TestHandler_ParseInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Keycloak: &MockIdentityProvider{}, Profiles: &MockProfileSaver{}, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"authCode":    "AQT-linkedin-code-123",
		"redirectUri": "https://portal.example/auth/linkedin",
		"role":        "employer",
	}))
	require.NoError(t, err)
	assert.Equal(t, "AQT-linkedin-code-123", input.AuthCode)
	assert.Equal(t, "employer", input.Role)

	_, err = h.parseInput(createMockJob(2, map[string]interface{}{"authCode": "short"}))
	assert.Error(t, err)

	_, err = h.parseInput(createMockJob(3, map[string]interface{}{"redirectUri": "https://portal.example"}))
	assert.Error(t, err)
}

func TestNewHandler_Validation(t *testing.T) {
	_, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger()})
	assert.Error(t, err, "keycloak is required")

	cfg := DefaultConfig()
	cfg.DefaultRole = models.RoleAdmin
	_, err = NewHandler(HandlerOptions{Keycloak: &MockIdentityProvider{}, CustomConfig: cfg})
	assert.Error(t, err)
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	appConfig := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 2, Timeout: 15000},
	}}
	appConfig.Auth.LinkedIn = config.OAuthConfig{
		ClientID: "li-app", ClientSecret: "li-secret", APIURL: "http://linkedin.local", DefaultRole: "employer",
	}

	cfg := createConfigFromAppConfig(appConfig, nil)
	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.True(t, cfg.configured())
	assert.Equal(t, "http://linkedin.local", cfg.APIURL)
	assert.Equal(t, "https://www.linkedin.com/oauth/v2/accessToken", cfg.TokenURL)
	assert.Equal(t, models.RoleEmployer, cfg.DefaultRole)
}
