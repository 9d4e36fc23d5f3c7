// internal/workers/infrastructure/select-template/handler.go
package selecttemplate

import (
	"context"
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

const (
	TaskType = "select-template"
)

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrNoTemplate       = errors.New("TEMPLATE_NOT_FOUND")
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

	output, err := h.execute(&input)
	if err != nil {
		errorCode := "VALIDATION_FAILED"
		if errors.Is(err, ErrNoTemplate) {
			errorCode = "TEMPLATE_NOT_FOUND"
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), 0, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(input *Input) (*Output, error) {
	eventType := normalize(input.EventType)
	if eventType == "" {
		return nil, fmt.Errorf("%w: eventType is required", ErrValidationFailed)
	}

	for _, key := range candidateKeys(eventType, normalize(input.Role), normalize(input.Channel)) {
		if id, ok := h.config.Rules[key]; ok && id != "" {
			return &Output{TemplateID: id, MatchedRule: key}, nil
		}
	}

	if h.config.Default == "" {
		return nil, fmt.Errorf("%w: no rule for %s and no default", ErrNoTemplate, eventType)
	}
	h.logger.Debug("no template rule matched, using default", map[string]interface{}{
		"eventType": eventType,
		"role":      input.Role,
		"channel":   input.Channel,
	})
	return &Output{TemplateID: h.config.Default, IsDefault: true}, nil
}

// candidateKeys lists rule keys from most to least specific.
func candidateKeys(eventType, role, channel string) []string {
	keys := make([]string, 0, 3)
	if role != "" && channel != "" {
		keys = append(keys, eventType+"."+role+"."+channel)
	}
	if channel != "" {
		keys = append(keys, eventType+"."+channel)
	}
	return append(keys, eventType)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(input)
}
