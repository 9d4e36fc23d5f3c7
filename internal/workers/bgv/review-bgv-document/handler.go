// internal/workers/bgv/review-bgv-document/handler.go
package reviewbgvdocument

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

const TaskType = "review-bgv-document"

var (
	ErrDocumentNotFound = errors.New("BGV_DOCUMENT_NOT_FOUND")
	ErrAlreadyReviewed  = errors.New("BGV_ALREADY_REVIEWED")
	ErrNotAuthorized    = errors.New("NOT_AUTHORIZED")
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
		var errorCode string
		var retries int32
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			errorCode = "BGV_DOCUMENT_NOT_FOUND"
		case errors.Is(err, ErrAlreadyReviewed):
			errorCode = "BGV_ALREADY_REVIEWED"
		case errors.Is(err, ErrNotAuthorized):
			errorCode = "NOT_AUTHORIZED"
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		default:
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
	decision := strings.ToLower(strings.TrimSpace(input.Decision))
	switch {
	case input.DocumentID == "" || input.ReviewerID == "":
		return nil, fmt.Errorf("%w: documentId and reviewerId are required", ErrValidationFailed)
	case decision != models.BGVVerified && decision != models.BGVRejected:
		return nil, fmt.Errorf("%w: decision must be verified or rejected", ErrValidationFailed)
	case decision == models.BGVRejected && strings.TrimSpace(input.Remarks) == "":
		return nil, fmt.Errorf("%w: remarks are required when rejecting", ErrValidationFailed)
	}

	if h.config.RequireStaffReviewer {
		if err := h.checkReviewer(ctx, input.ReviewerID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	var candidateID, docType string
	latest := make(map[string]string, len(models.BGVDocTypes))

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `
			SELECT candidate_id, doc_type, status FROM bgv_documents WHERE id = $1 FOR UPDATE`,
			input.DocumentID).Scan(&candidateID, &docType, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, input.DocumentID)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		if status != models.BGVPending {
			return fmt.Errorf("%w: document is %s", ErrAlreadyReviewed, status)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE bgv_documents SET status = $1, remarks = $2, reviewed_by = $3, updated_at = $4
			WHERE id = $5 AND status = $6`,
			decision, input.Remarks, input.ReviewerID, now, input.DocumentID, models.BGVPending)
		if err != nil {
			return fmt.Errorf("%w: update document: %v", ErrDatabase, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: document changed during review", ErrAlreadyReviewed)
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT DISTINCT ON (doc_type) doc_type, status FROM bgv_documents
			WHERE candidate_id = $1 AND status <> $2
			ORDER BY doc_type, created_at DESC`,
			candidateID, models.BGVSuperseded)
		if err != nil {
			return fmt.Errorf("%w: latest documents: %v", ErrDatabase, err)
		}
		defer rows.Close()
		for rows.Next() {
			var t, s string
			if err := rows.Scan(&t, &s); err != nil {
				return fmt.Errorf("%w: %v", ErrDatabase, err)
			}
			latest[t] = s
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	overall := models.OverallBGVStatus(latest)
	h.logger.Info("bgv document reviewed", map[string]interface{}{
		"documentId":    input.DocumentID,
		"decision":      decision,
		"overallStatus": overall,
	})

	return &Output{
		DocumentID:    input.DocumentID,
		CandidateID:   candidateID,
		DocType:       docType,
		Status:        decision,
		OverallStatus: overall,
		LatestByType:  latest,
		ReviewedAt:    now.Format(time.RFC3339),
	}, nil
}

func (h *Handler) checkReviewer(ctx context.Context, reviewerID string) error {
	var role string
	err := h.db.QueryRowContext(ctx, `SELECT role FROM profiles WHERE id = $1`, reviewerID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: reviewer %s not found", ErrNotAuthorized, reviewerID)
	}
	if err != nil {
		return fmt.Errorf("%w: reviewer lookup: %v", ErrDatabase, err)
	}
	if !models.Role(role).IsStaff() {
		return fmt.Errorf("%w: %s cannot review documents", ErrNotAuthorized, role)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
