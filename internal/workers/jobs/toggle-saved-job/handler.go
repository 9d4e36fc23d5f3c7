// internal/workers/jobs/toggle-saved-job/handler.go
package togglesavedjob

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "toggle-saved-job"

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrDatabase         = errors.New("DATABASE_CONNECTION_FAILED")
)

const (
	insertSavedJob = `INSERT INTO saved_jobs (candidate_id, job_id, saved_at) VALUES ($1, $2, NOW()) ON CONFLICT (candidate_id, job_id) DO NOTHING`
	deleteSavedJob = `DELETE FROM saved_jobs WHERE candidate_id = $1 AND job_id = $2`
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
		errorCode, retries := "VALIDATION_FAILED", int32(0)
		if errors.Is(err, ErrDatabase) {
			errorCode, retries = "DATABASE_CONNECTION_FAILED", 3
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.CandidateID) == "" || strings.TrimSpace(input.JobID) == "" {
		return nil, fmt.Errorf("%w: candidateId and jobId are required", ErrValidationFailed)
	}

	action := strings.ToLower(strings.TrimSpace(input.Action))
	if action == "" {
		action = ActionToggle
	}

	var saved bool
	switch action {
	case ActionSave:
		if err := h.exec(ctx, insertSavedJob, input); err != nil {
			return nil, err
		}
		saved = true
	case ActionUnsave:
		if err := h.exec(ctx, deleteSavedJob, input); err != nil {
			return nil, err
		}
	case ActionToggle:
		res, err := h.db.ExecContext(ctx, deleteSavedJob, input.CandidateID, input.JobID)
		if err != nil {
			return nil, fmt.Errorf("%w: delete saved job: %v", ErrDatabase, err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		if removed == 0 {
			if err := h.exec(ctx, insertSavedJob, input); err != nil {
				return nil, err
			}
			saved = true
		}
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidationFailed, input.Action)
	}

	h.logger.Info("saved job updated", map[string]interface{}{
		"candidateId": input.CandidateID,
		"jobId":       input.JobID,
		"saved":       saved,
	})

	return &Output{CandidateID: input.CandidateID, JobID: input.JobID, Saved: saved}, nil
}

func (h *Handler) exec(ctx context.Context, query string, input *Input) error {
	if _, err := h.db.ExecContext(ctx, query, input.CandidateID, input.JobID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
