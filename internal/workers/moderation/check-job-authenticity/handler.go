// internal/workers/moderation/check-job-authenticity/handler.go
package checkjobauthenticity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/pkg/mockai"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "check-job-authenticity"

var ErrValidationFailed = errors.New("VALIDATION_FAILED")

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		timer.Failed("VALIDATION_FAILED")
		camunda.FailJob(ctx, client, job, "VALIDATION_FAILED", err.Error(), 0, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Title) == "" && strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: title or description is required", ErrValidationFailed)
	}

	result := mockai.CheckJobAuthenticity(mockai.JobPosting{
		Title:        input.Title,
		Description:  input.Description,
		CompanyName:  input.CompanyName,
		ContactEmail: input.ContactEmail,
		Salary:       input.Salary,
		Location:     input.Location,
	})

	h.logger.Info("authenticity checked", map[string]interface{}{
		"jobId":     input.JobID,
		"score":     result.Score,
		"riskLevel": result.RiskLevel,
		"flags":     len(result.Flags),
	})

	return &Output{
		AuthenticityScore: result.Score,
		RiskLevel:         result.RiskLevel,
		Flags:             result.Flags,
		IsAuthentic:       result.RiskLevel != mockai.RiskHigh,
		CheckedAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
