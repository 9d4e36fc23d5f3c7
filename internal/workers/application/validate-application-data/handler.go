// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/common/validation"
	"job-portal-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-application-data"
)

var (
	ErrApplicationValidationFailed = errors.New("APPLICATION_VALIDATION_FAILED")
)

var phoneCleanup = regexp.MustCompile(`[^\d+]`)

type Handler struct {
	config *Config
	schema validation.JSONSchema
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		schema: applicationSchema(config.MaxCoverLetter),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func applicationSchema(maxCoverLetter int) validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"candidateId": {Type: "string", MinLength: validation.IntPtr(1)},
			"jobId":       {Type: "string", MinLength: validation.IntPtr(1)},
			"coverLetter": {Type: "string", MaxLength: validation.IntPtr(maxCoverLetter)},
			"email":       {Type: "string", Format: "email"},
			"phone":       {Type: "string", Format: "phone"},
			"answers":     {Type: "object"},
			"resume": {
				Type: "object",
				Properties: map[string]validation.Property{
					"bucket": {Type: "string", Enum: []string{models.BucketResumes}},
					"path":   {Type: "string", MinLength: validation.IntPtr(1)},
				},
				Required: []string{"bucket", "path"},
			},
		},
		Required:             []string{"candidateId", "jobId"},
		AdditionalProperties: true,
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
		camunda.FailJob(ctx, client, job, "PARSE_ERROR", err.Error(), 0, h.logger)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		timer.Failed("APPLICATION_VALIDATION_FAILED")
		camunda.FailJob(ctx, client, job, "APPLICATION_VALIDATION_FAILED", err.Error(), 0, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// execute reports field problems in the output so the process can route on isValid.
// Only a missing payload is an error.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ApplicationData == nil {
		return nil, fmt.Errorf("%w: applicationData is required", ErrApplicationValidationFailed)
	}

	normalized := normalize(input.ApplicationData)
	result := validation.ValidateInput(normalized, h.schema)

	// map iteration order leaks into the error list otherwise
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Field < result.Errors[j].Field
	})

	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    result.Valid,
		"errorCount": len(result.Errors),
	})

	if !result.Valid {
		return &Output{
			IsValid:          false,
			ValidatedData:    map[string]interface{}{},
			ValidationErrors: result.Errors,
		}, nil
	}

	validated := make(map[string]interface{}, len(normalized))
	for k, v := range normalized {
		if _, known := h.schema.Properties[k]; known {
			validated[k] = v
		}
	}

	return &Output{
		IsValid:          true,
		ValidatedData:    validated,
		ValidationErrors: []validation.ValidationError{},
	}, nil
}

// normalize trims strings, lower-cases the email and strips phone punctuation.
func normalize(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		s = strings.TrimSpace(s)
		switch k {
		case "email":
			s = strings.ToLower(s)
		case "phone":
			s = phoneCleanup.ReplaceAllString(s, "")
		}
		out[k] = s
	}

	if resume, ok := out["resume"].(map[string]interface{}); ok {
		ref := make(map[string]interface{}, len(resume))
		for k, v := range resume {
			ref[k] = v
		}
		if p, ok := ref["path"].(string); ok {
			ref["path"] = strings.TrimLeft(strings.TrimSpace(p), "/")
		}
		out["resume"] = ref
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
