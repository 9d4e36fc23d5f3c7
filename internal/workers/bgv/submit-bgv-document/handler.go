// internal/workers/bgv/submit-bgv-document/handler.go
package submitbgvdocument

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
)

const TaskType = "submit-bgv-document"

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrDatabase         = errors.New("DATABASE_CONNECTION_FAILED")
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
	if err := h.validate(input); err != nil {
		return nil, err
	}

	docID := uuid.New().String()
	now := time.Now().UTC()
	var superseded int64

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bgv_documents SET status = $1, updated_at = $2
			WHERE candidate_id = $3 AND doc_type = $4 AND status = $5`,
			models.BGVSuperseded, now, input.CandidateID, input.DocType, models.BGVPending)
		if err != nil {
			return fmt.Errorf("%w: supersede: %v", ErrDatabase, err)
		}
		if superseded, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO bgv_documents (id, candidate_id, doc_type, file_bucket, file_path, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			docID, input.CandidateID, input.DocType, input.File.Bucket, input.File.Path, models.BGVPending, now)
		if err != nil {
			return fmt.Errorf("%w: insert document: %v", ErrDatabase, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("bgv document submitted", map[string]interface{}{
		"documentId":  docID,
		"candidateId": input.CandidateID,
		"docType":     input.DocType,
		"superseded":  superseded,
	})

	return &Output{
		DocumentID:      docID,
		Status:          models.BGVPending,
		SupersededCount: superseded,
		SubmittedAt:     now.Format(time.RFC3339),
	}, nil
}

func (h *Handler) validate(input *Input) error {
	input.DocType = strings.ToLower(strings.TrimSpace(input.DocType))
	input.File.Path = strings.TrimLeft(strings.TrimSpace(input.File.Path), "/")

	switch {
	case strings.TrimSpace(input.CandidateID) == "":
		return fmt.Errorf("%w: candidateId is required", ErrValidationFailed)
	case !models.ValidBGVDocType(input.DocType):
		return fmt.Errorf("%w: docType must be one of %s", ErrValidationFailed, strings.Join(models.BGVDocTypes, ", "))
	case input.File.Path == "":
		return fmt.Errorf("%w: file.path is required", ErrValidationFailed)
	}
	for _, b := range h.config.Buckets {
		if input.File.Bucket == b {
			return nil
		}
	}
	return fmt.Errorf("%w: bucket %q is not allowed", ErrValidationFailed, input.File.Bucket)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
