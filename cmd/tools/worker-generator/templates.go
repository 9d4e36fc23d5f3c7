// cmd/tools/worker-generator/templates.go
package main

const configTemplate = `// internal/workers/{{ .Dir }}/{{ .ID }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .TimeoutExpr }},
	}
}
`

const modelsTemplate = `// internal/workers/{{ .Dir }}/{{ .ID }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}
`

const handlerTemplate = `// internal/workers/{{ .Dir }}/{{ .ID }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"{{ .Module }}/internal/common/camunda"
	"{{ .Module }}/internal/common/logger"
	"{{ .Module }}/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"
{{ if .Errors }}
var (
{{- range .Errors }}
	{{ .Var }} = errors.New("{{ .Code }}")
{{- end }}
)
{{ end }}
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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		errorCode, retries := mapError(err)
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func mapError(err error) (string, int32) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT", 2
{{- range .Errors }}
	case errors.Is(err, {{ .Var }}):
		return "{{ .Code }}", {{ .Retries }}
{{- end }}
	}
	return "UNKNOWN_ERROR", 0
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return nil, fmt.Errorf("{{ .TaskType }}: not implemented")
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"{{ .Module }}/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}
`
