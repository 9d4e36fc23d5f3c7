// internal/workers/application/update-application-status/handler.go
package updateapplicationstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/database"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "update-application-status"

var (
	ErrApplicationNotFound     = errors.New("APPLICATION_NOT_FOUND")
	ErrInvalidStatusTransition = errors.New("INVALID_STATUS_TRANSITION")
	ErrNotAuthorized           = errors.New("NOT_AUTHORIZED")
	ErrValidationFailed        = errors.New("VALIDATION_FAILED")
	ErrDatabase                = errors.New("DATABASE_CONNECTION_FAILED")
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
		errorCode, retries := h.classify(err)
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) classify(err error) (string, int32) {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		return "APPLICATION_NOT_FOUND", 0
	case errors.Is(err, ErrInvalidStatusTransition):
		return "INVALID_STATUS_TRANSITION", 0
	case errors.Is(err, ErrNotAuthorized):
		return "NOT_AUTHORIZED", 0
	case errors.Is(err, ErrValidationFailed):
		return "VALIDATION_FAILED", 0
	case errors.Is(err, ErrDatabase):
		return "DATABASE_CONNECTION_FAILED", 3
	default:
		return "UNKNOWN_ERROR", 0
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ApplicationID) == "" || strings.TrimSpace(input.ActorID) == "" {
		return nil, fmt.Errorf("%w: applicationId and actorId are required", ErrValidationFailed)
	}
	to := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(input.ToStatus)))
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, input.ToStatus)
	}

	var from models.ApplicationStatus
	var candidateID string
	updatedAt := time.Now().UTC()

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var current, employerID string
		err := tx.QueryRowContext(ctx, `
			SELECT a.status, a.candidate_id, j.employer_id
			FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.id = $1`, input.ApplicationID).Scan(&current, &candidateID, &employerID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrApplicationNotFound, input.ApplicationID)
		}
		if err != nil {
			return fmt.Errorf("%w: load application: %v", ErrDatabase, err)
		}
		from = models.ApplicationStatus(current)

		owner := employerID
		if to == models.ApplicationWithdrawn {
			owner = candidateID
		}
		if input.ActorID != owner {
			return fmt.Errorf("%w: %s may not move application %s to %s",
				ErrNotAuthorized, input.ActorID, input.ApplicationID, to)
		}

		if !models.CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
		}

		// Guarded on the status we read so a concurrent move loses instead of overwriting.
		res, err := tx.ExecContext(ctx, `
			UPDATE applications SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4`,
			string(to), updatedAt, input.ApplicationID, string(from))
		if err != nil {
			return fmt.Errorf("%w: update status: %v", ErrDatabase, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: application %s changed concurrently", ErrInvalidStatusTransition, input.ApplicationID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO application_status_history (application_id, from_status, to_status, changed_by, note, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			input.ApplicationID, string(from), string(to), input.ActorID, input.Note, updatedAt)
		if err != nil {
			return fmt.Errorf("%w: status history: %v", ErrDatabase, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	next := []string{}
	for _, s := range models.AllowedTransitions(to) {
		next = append(next, string(s))
	}

	h.logger.Info("application status updated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"from":          from,
		"to":            to,
	})

	return &Output{
		ApplicationID:  input.ApplicationID,
		CandidateID:    candidateID,
		PreviousStatus: string(from),
		Status:         string(to),
		IsTerminal:     to.IsTerminal(),
		NextStatuses:   next,
		UpdatedAt:      updatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
