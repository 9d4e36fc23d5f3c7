// internal/workers/data-access/query-postgresql/handler.go
package querypostgresql

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
	"job-portal-workers/internal/workers/data-access/query-postgresql/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-postgresql"
)

var (
	ErrDatabaseConnectionFailed = errors.New("DATABASE_CONNECTION_FAILED")
	ErrQueryExecutionFailed     = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout             = errors.New("QUERY_TIMEOUT")
	ErrInvalidQueryType         = errors.New("INVALID_QUERY_TYPE")
	ErrValidationFailed         = errors.New("VALIDATION_FAILED")
	ErrResourceNotFound         = errors.New("RESOURCE_NOT_FOUND")
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
		errorCode := "QUERY_EXECUTION_FAILED"
		retries := int32(3)
		switch {
		case errors.Is(err, ErrQueryTimeout):
			errorCode, retries = "QUERY_TIMEOUT", 2
		case errors.Is(err, ErrInvalidQueryType):
			errorCode, retries = "INVALID_QUERY_TYPE", 0
		case errors.Is(err, ErrValidationFailed):
			errorCode, retries = "VALIDATION_FAILED", 0
		case errors.Is(err, ErrResourceNotFound):
			errorCode, retries = "RESOURCE_NOT_FOUND", 0
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrValidationFailed)
	}

	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryType, input.QueryType)
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.db, queryType, h.params(input))
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return nil, ErrQueryTimeout
		case errors.Is(err, queries.ErrMissingParam):
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		case errors.Is(err, queries.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, input.QueryType)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType": input.QueryType,
		"rowCount":  rowCount,
		"execMs":    execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

func (h *Handler) params(input *Input) map[string]interface{} {
	limit := input.Limit
	if limit <= 0 {
		limit = h.config.PageSize
	}
	p := map[string]interface{}{
		"status":            input.Status,
		"includeSuperseded": input.IncludeSuperseded,
		"limit":             limit,
		"offset":            input.Offset,
	}
	for key, v := range map[string]string{
		"jobId":          input.JobID,
		"employerId":     input.EmployerID,
		"candidateId":    input.CandidateID,
		"conversationId": input.ConversationID,
		"groupId":        input.GroupID,
		"studentId":      input.StudentID,
		"approverId":     input.ApproverID,
	} {
		if v != "" {
			p[key] = v
		}
	}
	return p
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
