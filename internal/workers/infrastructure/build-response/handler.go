// internal/workers/infrastructure/build-response/handler.go
package buildresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "build-response"

var (
	ErrTemplateNotFound         = errors.New("TEMPLATE_NOT_FOUND")
	ErrTemplateValidationFailed = errors.New("TEMPLATE_VALIDATION_FAILED")
	ErrRegistryUnavailable      = errors.New("REGISTRY_UNAVAILABLE")
	ErrValidationFailed         = errors.New("VALIDATION_FAILED")
)

// wholePlaceholder matches a string that is exactly one {{path}}; its value keeps its JSON type.
var wholePlaceholder = regexp.MustCompile(`^\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}$`)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time

	mu       sync.RWMutex
	cache    map[string]*TemplateDefinition
	loadedAt time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		errorCode := "RESPONSE_BUILD_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrTemplateNotFound):
			errorCode = "TEMPLATE_NOT_FOUND"
		case errors.Is(err, ErrTemplateValidationFailed):
			errorCode = "TEMPLATE_VALIDATION_FAILED"
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		case errors.Is(err, ErrRegistryUnavailable):
			errorCode, retries = "REGISTRY_UNAVAILABLE", 2
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.TemplateID) == "" {
		return nil, fmt.Errorf("%w: templateId is required", ErrValidationFailed)
	}
	if input.Data == nil {
		input.Data = map[string]interface{}{}
	}

	template, err := h.loadTemplate(input.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := validateData(template.Schema, input.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateValidationFailed, err)
	}

	data, ok := substitute(template.Template, input.Data).(map[string]interface{})
	if !ok || data == nil {
		return nil, fmt.Errorf("template %s must have an object root", input.TemplateID)
	}

	return &Output{Response: ResponsePayload{
		RequestID: input.RequestID,
		Status:    "success",
		Data:      data,
		Metadata: ResponseMetadata{
			TemplateID:      template.ID,
			TemplateVersion: template.Version,
			Timestamp:       h.now().UTC().Format(time.RFC3339),
			Version:         h.config.AppVersion,
		},
	}}, nil
}

// substitute walks the template. A string that is exactly {{path}} is replaced by the
// value at path (nil when absent); placeholders inside longer strings are rendered as text.
func substitute(node interface{}, data map[string]interface{}) interface{} {
	switch v := node.(type) {
	case string:
		if m := wholePlaceholder.FindStringSubmatch(v); m != nil {
			value, _ := models.Lookup(data, m[1])
			return value
		}
		if strings.Contains(v, "{{") {
			return models.RenderPlaceholders(v, data)
		}
		return v
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, child := range v {
			result[k] = substitute(child, data)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = substitute(item, data)
		}
		return result
	default:
		return v
	}
}

// loadTemplate serves from the registry snapshot while it is younger than CacheTTL.
func (h *Handler) loadTemplate(id string) (*TemplateDefinition, error) {
	h.mu.RLock()
	fresh := h.cache != nil && h.now().Sub(h.loadedAt) < h.config.CacheTTL
	if fresh {
		t, ok := h.cache[id]
		h.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return t, nil
	}
	h.mu.RUnlock()

	templates, err := readRegistry(h.config.TemplateRegistry)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.cache = templates
	h.loadedAt = h.now()
	h.mu.Unlock()

	h.logger.Debug("template registry loaded", map[string]interface{}{
		"path":      h.config.TemplateRegistry,
		"templates": len(templates),
	})

	t, ok := templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

func readRegistry(path string) (map[string]*TemplateDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read registry: %v", ErrRegistryUnavailable, err)
	}

	var registry templateRegistry
	if err := json.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("%w: parse registry: %v", ErrRegistryUnavailable, err)
	}

	templates := make(map[string]*TemplateDefinition, len(registry.Templates))
	for i := range registry.Templates {
		t := registry.Templates[i]
		templates[t.ID] = &t
	}
	return templates, nil
}

func validateData(schemaMap, data map[string]interface{}) error {
	if len(schemaMap) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schemaMap), gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("data validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
