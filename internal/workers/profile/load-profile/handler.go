// internal/workers/profile/load-profile/handler.go
package loadprofile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"
	"job-portal-workers/internal/workers/profile/profilestore"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "load-profile"

var ErrValidationFailed = errors.New("VALIDATION_FAILED")

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
		case errors.Is(err, profilestore.ErrProfileNotFound):
			errorCode = "PROFILE_NOT_FOUND"
		case errors.Is(err, models.ErrUnknownRole):
			errorCode = "UNKNOWN_ROLE"
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		case errors.Is(err, profilestore.ErrDatabase):
			errorCode = "DATABASE_CONNECTION_FAILED"
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
	if input.ProfileID == "" {
		return nil, fmt.Errorf("%w: profileId is required", ErrValidationFailed)
	}

	profile, err := h.store.Load(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("profile loaded", map[string]interface{}{
		"profileId":           input.ProfileID,
		"role":                profile.Role,
		"roleProfileComplete": profile.RoleProfileComplete,
	})

	return &Output{
		Profile:             profile.Fields,
		Role:                string(profile.Role),
		RoleProfileComplete: profile.RoleProfileComplete,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
