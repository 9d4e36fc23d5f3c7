// internal/workers/moderation/analyze-content/handler.go
package analyzecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/pkg/mockai"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "analyze-content"

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrContentRejected  = errors.New("CONTENT_REJECTED")
)

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
		errorCode := "VALIDATION_FAILED"
		if errors.Is(err, ErrContentRejected) {
			errorCode = "CONTENT_REJECTED"
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), 0, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidationFailed)
	}
	if n := utf8.RuneCountInString(input.Text); n > h.config.MaxLength {
		return nil, fmt.Errorf("%w: text has %d characters, max %d", ErrValidationFailed, n, h.config.MaxLength)
	}

	analysis, err := mockai.AnalyzeHTML(input.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	h.logger.Info("content analyzed", map[string]interface{}{
		"contentId":     input.ContentID,
		"contentType":   input.ContentType,
		"toxicityScore": analysis.ToxicityScore,
		"appropriate":   analysis.IsAppropriate,
	})

	if input.RejectIfToxic && !analysis.IsAppropriate {
		return nil, fmt.Errorf("%w: toxicity score %d, flagged %s",
			ErrContentRejected, analysis.ToxicityScore, strings.Join(analysis.FlaggedTerms, ", "))
	}

	return &Output{
		ToxicityScore: analysis.ToxicityScore,
		IsAppropriate: analysis.IsAppropriate,
		FlaggedTerms:  analysis.FlaggedTerms,
		Suggestions:   analysis.Suggestions,
		ImprovedText:  analysis.ImprovedText,
		WordCount:     analysis.WordCount,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
