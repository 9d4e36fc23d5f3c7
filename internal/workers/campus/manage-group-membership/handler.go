// internal/workers/campus/manage-group-membership/handler.go
package managegroupmembership

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

const TaskType = "manage-group-membership"

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrGroupNotFound    = errors.New("GROUP_NOT_FOUND")
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
		errorCode, retries := "DATABASE_CONNECTION_FAILED", int32(3)
		if errors.Is(err, ErrGroupNotFound) {
			errorCode, retries = "GROUP_NOT_FOUND", 0
		} else if errors.Is(err, ErrValidationFailed) {
			errorCode, retries = "VALIDATION_FAILED", 0
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	action := strings.ToLower(strings.TrimSpace(input.Action))
	if input.GroupID == "" || input.ProfileID == "" {
		return nil, fmt.Errorf("%w: groupId and profileId are required", ErrValidationFailed)
	}

	var exists bool
	if err := h.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, input.GroupID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%w: group lookup: %v", ErrDatabase, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, input.GroupID)
	}

	var res sql.Result
	var err error
	switch action {
	case ActionJoin:
		res, err = h.db.ExecContext(ctx, `
			INSERT INTO group_members (group_id, profile_id, joined_at) VALUES ($1, $2, NOW())
			ON CONFLICT (group_id, profile_id) DO NOTHING`, input.GroupID, input.ProfileID)
	case ActionLeave:
		res, err = h.db.ExecContext(ctx, `
			DELETE FROM group_members WHERE group_id = $1 AND profile_id = $2`, input.GroupID, input.ProfileID)
	default:
		return nil, fmt.Errorf("%w: action must be join or leave", ErrValidationFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabase, action, err)
	}
	affected, _ := res.RowsAffected()

	var count int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM group_members WHERE group_id = $1`, input.GroupID).Scan(&count); err != nil {
		return nil, fmt.Errorf("%w: member count: %v", ErrDatabase, err)
	}

	h.logger.Info("group membership updated", map[string]interface{}{
		"groupId":     input.GroupID,
		"action":      action,
		"changed":     affected > 0,
		"memberCount": count,
	})

	return &Output{
		GroupID:     input.GroupID,
		ProfileID:   input.ProfileID,
		IsMember:    action == ActionJoin,
		Changed:     affected > 0,
		MemberCount: count,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
