// internal/workers/application/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"testing"

	"job-portal-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         int
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       int
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	return m.PublishFunc(ctx, params, optFns...)
}

func okSES(t *testing.T) *MockSESService {
	return &MockSESService{SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		assert.Equal(t, "ana@portal.io", params.Destination.ToAddresses[0])
		assert.Equal(t, "Your application is now shortlisted", *params.Message.Subject.Data)
		assert.Equal(t, "Hi Ana, your application for Go Engineer moved from applied to shortlisted.", *params.Message.Body.Text.Data)
		return &ses.SendEmailOutput{}, nil
	}}
}

func okSNS() *MockSNSService {
	return &MockSNSService{PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
		return &sns.PublishOutput{}, nil
	}}
}

func statusChangedInput(priority string) *Input {
	return &Input{
		RecipientID: "cand-1",
		EventType:   "status_changed",
		Priority:    priority,
		Metadata: map[string]interface{}{
			"jobTitle":       "Go Engineer",
			"previousStatus": "applied",
			"status":         "shortlisted",
		},
	}
}

func expectRecipient(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT email, phone, full_name FROM profiles WHERE id = \$1`).
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone", "full_name"}).
			AddRow("ana@portal.io", "+919876543210", "Ana"))
}

func testConfig(email, sms bool) *Config {
	cfg := LoadConfig()
	cfg.EmailEnabled = email
	cfg.SMSEnabled = sms
	return cfg
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name         string
		emailEnabled bool
		smsEnabled   bool
		priority     string
		wantStatus   string
		wantChannels []string
	}{
		{"email and SMS for high priority", true, true, "high", StatusSent, []string{ChannelEmail, ChannelSMS}},
		{"email only for normal priority", true, true, "normal", StatusSent, []string{ChannelEmail}},
		{"SMS only", false, true, "high", StatusSent, []string{ChannelSMS}},
		{"nothing enabled", false, false, "high", StatusDisabled, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expectRecipient(mock)
			mock.ExpectExec(`INSERT INTO notifications`).WillReturnResult(sqlmock.NewResult(1, 1))

			sesMock, snsMock := okSES(t), okSNS()
			handler := NewHandler(testConfig(tt.emailEnabled, tt.smsEnabled), db, sesMock, snsMock, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), statusChangedInput(tt.priority))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, output.Status)
			assert.Equal(t, tt.wantChannels, output.Channels)
			assert.NotEmpty(t, output.NotificationID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RecipientMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM profiles`).WillReturnRows(sqlmock.NewRows([]string{"email", "phone", "full_name"}))

	sesMock := okSES(t)
	handler := NewHandler(testConfig(true, true), db, sesMock, okSNS(), logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), statusChangedInput("high"))
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Zero(t, sesMock.calls)
}

func TestHandler_Execute_Failures(t *testing.T) {
	t.Run("unknown event type", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		handler := NewHandler(testConfig(true, true), db, okSES(t), okSNS(), logger.NewTestLogger(t))
		_, err = handler.Execute(context.Background(), &Input{RecipientID: "cand-1", EventType: "birthday"})
		assert.ErrorIs(t, err, ErrUnknownEventType)
	})

	t.Run("email failure is retryable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		expectRecipient(mock)

		failing := &MockSESService{SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		}}
		handler := NewHandler(testConfig(true, true), db, failing, okSNS(), logger.NewTestLogger(t))
		_, err = handler.Execute(context.Background(), statusChangedInput("high"))
		assert.ErrorIs(t, err, ErrNotificationSendFailed)
	})

	t.Run("sms failure after email is tolerated", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		expectRecipient(mock)
		mock.ExpectExec(`INSERT INTO notifications`).WillReturnResult(sqlmock.NewResult(1, 1))

		failing := &MockSNSService{PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("opted out")
		}}
		handler := NewHandler(testConfig(true, true), db, okSES(t), failing, logger.NewTestLogger(t))
		output, err := handler.Execute(context.Background(), statusChangedInput("high"))
		require.NoError(t, err)
		assert.Equal(t, []string{ChannelEmail}, output.Channels)
	})

	t.Run("database error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM profiles`).WillReturnError(errors.New("too many connections"))

		handler := NewHandler(testConfig(true, true), db, okSES(t), okSNS(), logger.NewTestLogger(t))
		_, err = handler.Execute(context.Background(), statusChangedInput("high"))
		assert.ErrorIs(t, err, ErrDatabase)
	})
}
