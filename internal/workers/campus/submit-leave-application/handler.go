// internal/workers/campus/submit-leave-application/handler.go
package submitleaveapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType   = "submit-leave-application"
	dateLayout = "2006-01-02"
)

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrLeaveOverlap     = errors.New("LEAVE_OVERLAP")
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
		case errors.Is(err, ErrLeaveOverlap):
			errorCode = "LEAVE_OVERLAP"
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
	from, to, err := h.validate(input)
	if err != nil {
		return nil, err
	}

	var overlapping bool
	err = h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leave_applications
			WHERE student_id = $1 AND status IN ($2, $3) AND from_date <= $4 AND to_date >= $5
		)`, input.StudentID, models.LeavePending, models.LeaveApproved, to, from).Scan(&overlapping)
	if err != nil {
		return nil, fmt.Errorf("%w: overlap check: %v", ErrDatabase, err)
	}
	if overlapping {
		return nil, fmt.Errorf("%w: %s already has leave between %s and %s",
			ErrLeaveOverlap, input.StudentID, input.FromDate, input.ToDate)
	}

	leaveID := uuid.New().String()
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO leave_applications (id, student_id, approver_id, from_date, to_date, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		leaveID, input.StudentID, input.ApproverID, from, to, input.Reason, models.LeavePending, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: insert leave: %v", ErrDatabase, err)
	}

	days := LeaveDays(from, to)
	h.logger.Info("leave application submitted", map[string]interface{}{
		"leaveId":   leaveID,
		"studentId": input.StudentID,
		"days":      days,
	})

	return &Output{
		LeaveID:  leaveID,
		Status:   models.LeavePending,
		Days:     days,
		FromDate: from.Format(dateLayout),
		ToDate:   to.Format(dateLayout),
	}, nil
}

func (h *Handler) validate(input *Input) (time.Time, time.Time, error) {
	input.Reason = strings.TrimSpace(input.Reason)
	if input.StudentID == "" || input.ApproverID == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: studentId and approverId are required", ErrValidationFailed)
	}
	if input.Reason == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: reason is required", ErrValidationFailed)
	}
	if input.StudentID == input.ApproverID {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: a student cannot approve their own leave", ErrValidationFailed)
	}

	from, err := time.Parse(dateLayout, input.FromDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: fromDate: %v", ErrValidationFailed, err)
	}
	to, err := time.Parse(dateLayout, input.ToDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: toDate: %v", ErrValidationFailed, err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: fromDate must not be after toDate", ErrValidationFailed)
	}
	if h.config.MaxDays > 0 && LeaveDays(from, to) > h.config.MaxDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: leave longer than %d days", ErrValidationFailed, h.config.MaxDays)
	}
	return from, to, nil
}

// LeaveDays counts calendar days, both ends included.
func LeaveDays(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
