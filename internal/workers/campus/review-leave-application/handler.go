// internal/workers/campus/review-leave-application/handler.go
package reviewleaveapplication

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

const TaskType = "review-leave-application"

var (
	ErrLeaveNotFound    = errors.New("LEAVE_NOT_FOUND")
	ErrNotAuthorized    = errors.New("NOT_AUTHORIZED")
	ErrLeaveNotPending  = errors.New("LEAVE_NOT_PENDING")
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
		case errors.Is(err, ErrLeaveNotFound):
			errorCode = "LEAVE_NOT_FOUND"
		case errors.Is(err, ErrNotAuthorized):
			errorCode = "NOT_AUTHORIZED"
		case errors.Is(err, ErrLeaveNotPending):
			errorCode = "LEAVE_NOT_PENDING"
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
	if input.LeaveID == "" || input.ReviewerID == "" {
		return nil, fmt.Errorf("%w: leaveId and reviewerId are required", ErrValidationFailed)
	}
	if decision != models.LeaveApproved && decision != models.LeaveRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", ErrValidationFailed)
	}

	now := time.Now().UTC()
	var studentID string
	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var approverID, status string
		err := tx.QueryRowContext(ctx, `
			SELECT student_id, approver_id, status FROM leave_applications WHERE id = $1 FOR UPDATE`,
			input.LeaveID).Scan(&studentID, &approverID, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrLeaveNotFound, input.LeaveID)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		if approverID != input.ReviewerID {
			return fmt.Errorf("%w: leave %s is assigned to another approver", ErrNotAuthorized, input.LeaveID)
		}
		if status != models.LeavePending {
			return fmt.Errorf("%w: leave is %s", ErrLeaveNotPending, status)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE leave_applications SET status = $1, remarks = $2, reviewed_at = $3
			WHERE id = $4`,
			decision, input.Remarks, now, input.LeaveID); err != nil {
			return fmt.Errorf("%w: update leave: %v", ErrDatabase, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("leave application reviewed", map[string]interface{}{
		"leaveId":  input.LeaveID,
		"decision": decision,
	})

	return &Output{
		LeaveID:    input.LeaveID,
		StudentID:  studentID,
		Status:     decision,
		ReviewedAt: now.Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
