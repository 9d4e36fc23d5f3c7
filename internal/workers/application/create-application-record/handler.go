// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

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
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "create-application-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
	ErrJobNotOpen           = errors.New("JOB_NOT_OPEN")
	ErrValidationFailed     = errors.New("VALIDATION_FAILED")
)

// pqUniqueViolation is the SQLSTATE for a unique constraint violation.
const pqUniqueViolation = "23505"

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
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrDatabaseInsertFailed):
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		case errors.Is(err, ErrDuplicateApplication):
			errorCode = "DUPLICATE_APPLICATION"
		case errors.Is(err, ErrJobNotOpen):
			errorCode = "JOB_NOT_OPEN"
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
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

	var jobStatus, employerID string
	err := h.db.QueryRowContext(ctx,
		`SELECT status, employer_id FROM jobs WHERE id = $1`, input.JobID).Scan(&jobStatus, &employerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s does not exist", ErrJobNotOpen, input.JobID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: job lookup failed: %v", ErrDatabaseInsertFailed, err)
	}
	if jobStatus != models.JobStatusActive {
		return nil, fmt.Errorf("%w: job %s is %s", ErrJobNotOpen, input.JobID, jobStatus)
	}

	var exists bool
	err = h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE candidate_id = $1 AND job_id = $2
		)`, input.CandidateID, input.JobID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: candidate %s already applied to job %s",
			ErrDuplicateApplication, input.CandidateID, input.JobID)
	}

	appID := uuid.New().String()
	now := time.Now().UTC()
	createdAt := now.Format(time.RFC3339)

	data := input.ValidatedData
	coverLetter, _ := data["coverLetter"].(string)
	var resumeBucket, resumePath sql.NullString
	if resume, ok := data["resume"].(map[string]interface{}); ok {
		if b, ok := resume["bucket"].(string); ok {
			resumeBucket = sql.NullString{String: b, Valid: true}
		}
		if p, ok := resume["path"].(string); ok {
			resumePath = sql.NullString{String: p, Valid: true}
		}
	}
	answersJSON, err := json.Marshal(data["answers"])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal answers: %v", ErrValidationFailed, err)
	}

	err = database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO applications (
				id, candidate_id, job_id, cover_letter, resume_bucket, resume_path,
				answers, fit_score, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			appID,
			input.CandidateID,
			input.JobID,
			coverLetter,
			resumeBucket,
			resumePath,
			answersJSON,
			input.FitScore,
			string(models.ApplicationApplied),
			now,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
				return fmt.Errorf("%w: candidate %s already applied to job %s",
					ErrDuplicateApplication, input.CandidateID, input.JobID)
			}
			return fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE jobs SET applicant_count = applicant_count + 1 WHERE id = $1`, input.JobID); err != nil {
			return fmt.Errorf("%w: applicant count: %v", ErrDatabaseInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Audit log is non-critical.
	auditDetailsJSON, _ := json.Marshal(map[string]interface{}{
		"candidateId": input.CandidateID,
		"jobId":       input.JobID,
		"fitScore":    input.FitScore,
	})
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"application_created",
		"application",
		appID,
		auditDetailsJSON,
		now,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": appID,
		})
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": appID,
		"candidateId":   input.CandidateID,
		"jobId":         input.JobID,
		"fitScore":      input.FitScore,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: string(models.ApplicationApplied),
		EmployerID:        employerID,
		CreatedAt:         createdAt,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
