// internal/workers/profile/save-profile/handler.go
package saveprofile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/common/validation"
	"job-portal-workers/internal/models"
	"job-portal-workers/internal/workers/profile/profilestore"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "save-profile"

type Handler struct {
	config *Config
	store  *profilestore.Store
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  profilestore.New(db),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		timer.Failed("PARSE_ERROR")
		camunda.FailJob(ctx, client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0, h.logger)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, models.ErrUnknownRole):
			errorCode = "UNKNOWN_ROLE"
		case errors.Is(err, profilestore.ErrRoleChangeNotAllowed):
			errorCode = "ROLE_CHANGE_NOT_ALLOWED"
		case errors.Is(err, profilestore.ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		case errors.Is(err, profilestore.ErrProfileSaveFailed):
			errorCode = "PROFILE_SAVE_FAILED"
			retries = 3
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Profile) == 0 {
		return nil, fmt.Errorf("%w: profile is required", profilestore.ErrValidationFailed)
	}
	if err := validateContact(input.Profile); err != nil {
		return nil, err
	}

	result, err := h.store.Save(ctx, input.Profile, profilestore.SaveOptions{})
	if err != nil {
		return nil, err
	}

	if len(result.IgnoredFields) > 0 {
		h.logger.Warn("ignored fields outside the profile tables", map[string]interface{}{
			"profileId": result.ProfileID,
			"fields":    result.IgnoredFields,
		})
	}
	h.logger.Info("profile saved", map[string]interface{}{
		"profileId":   result.ProfileID,
		"role":        result.Role,
		"savedFields": len(result.SavedFields),
	})

	return &Output{
		ProfileID:     result.ProfileID,
		Role:          string(result.Role),
		SavedFields:   result.SavedFields,
		IgnoredFields: result.IgnoredFields,
		UpdatedAt:     result.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func validateContact(profile map[string]interface{}) error {
	if email, ok := profile["email"].(string); ok && email != "" && !validation.ValidateEmail(email) {
		return fmt.Errorf("%w: invalid email %q", profilestore.ErrValidationFailed, email)
	}
	if phone, ok := profile["phone"].(string); ok && phone != "" && !validation.ValidatePhone(phone) {
		return fmt.Errorf("%w: invalid phone %q", profilestore.ErrValidationFailed, phone)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
