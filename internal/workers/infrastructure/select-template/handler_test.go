// internal/workers/infrastructure/select-template/handler_test.go
package selecttemplate

import (
	"context"
	"errors"
	"testing"

	"job-portal-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		Rules: map[string]string{
			"status_changed.candidate.email": "status-candidate-email",
			"status_changed.email":           "status-email",
			"status_changed":                 "status-any",
			"bgv_reviewed.sms":               "bgv-sms",
		},
		Default: "generic-notification",
	}
}

func createTestHandler(t *testing.T, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	return NewHandler(config, logger.NewTestLogger(t))
}

func TestHandler_Execute_LookupOrder(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		wantID      string
		wantRule    string
		wantDefault bool
	}{
		{
			name:     "role and channel",
			input:    &Input{EventType: "status_changed", Role: "candidate", Channel: "email"},
			wantID:   "status-candidate-email",
			wantRule: "status_changed.candidate.email",
		},
		{
			name:     "falls back to event and channel",
			input:    &Input{EventType: "status_changed", Role: "employer", Channel: "email"},
			wantID:   "status-email",
			wantRule: "status_changed.email",
		},
		{
			name:     "falls back to event",
			input:    &Input{EventType: "status_changed", Role: "candidate", Channel: "sms"},
			wantID:   "status-any",
			wantRule: "status_changed",
		},
		{
			name:     "no channel skips channel keys",
			input:    &Input{EventType: "status_changed", Role: "candidate"},
			wantID:   "status-any",
			wantRule: "status_changed",
		},
		{
			name:     "case and whitespace are ignored",
			input:    &Input{EventType: " BGV_Reviewed ", Channel: "SMS"},
			wantID:   "bgv-sms",
			wantRule: "bgv_reviewed.sms",
		},
		{
			name:        "default",
			input:       &Input{EventType: "leave_reviewed", Role: "student", Channel: "email"},
			wantID:      "generic-notification",
			wantDefault: true,
		},
	}

	handler := createTestHandler(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, output.TemplateID)
			assert.Equal(t, tt.wantRule, output.MatchedRule)
			assert.Equal(t, tt.wantDefault, output.IsDefault)
		})
	}
}

func TestHandler_Execute_Errors(t *testing.T) {
	handler := createTestHandler(t, nil)
	_, err := handler.Execute(context.Background(), &Input{Channel: "email"})
	assert.True(t, errors.Is(err, ErrValidationFailed))

	noDefault := createTestHandler(t, &Config{Rules: map[string]string{}})
	_, err = noDefault.Execute(context.Background(), &Input{EventType: "announcement"})
	assert.True(t, errors.Is(err, ErrNoTemplate))
}

func TestLoadConfig_DefaultRules(t *testing.T) {
	handler := createTestHandler(t, LoadConfig())

	output, err := handler.Execute(context.Background(), &Input{EventType: "new_application", Role: "admin", Channel: "sms"})
	require.NoError(t, err)
	assert.Equal(t, "new-application-sms", output.TemplateID)
}

func TestFlattenRules(t *testing.T) {
	rules, err := FlattenRules(map[string]interface{}{
		"status_changed": map[string]interface{}{
			"candidate": map[string]interface{}{"email": "a"},
			"sms":       "b",
		},
		"Announcement": "c",
		"legacy":       map[interface{}]interface{}{"email": "d"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"status_changed.candidate.email": "a",
		"status_changed.sms":             "b",
		"announcement":                   "c",
		"legacy.email":                   "d",
	}, rules)

	_, err = FlattenRules(map[string]interface{}{"bad": 3})
	assert.Error(t, err)
}
