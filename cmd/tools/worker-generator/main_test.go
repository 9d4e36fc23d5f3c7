package main

import (
	"os"
	"path/filepath"
	"testing"

	"job-portal-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleActivity = registry.Activity{
	ID:         "close-job-posting",
	TaskType:   "close-job-posting",
	Category:   "jobs",
	Timeout:    "15s",
	Retries:    3,
	ErrorCodes: []string{"JOB_NOT_FOUND", "DATABASE_CONNECTION_FAILED"},
	InputSchema: map[string]interface{}{
		"properties": map[string]interface{}{
			"jobId":       map[string]interface{}{"type": "string", "description": "Job to close"},
			"employer_id": map[string]interface{}{"type": "string"},
			"notify":      map[string]interface{}{"type": "boolean"},
		},
	},
	OutputSchema: map[string]interface{}{
		"properties": map[string]interface{}{
			"closedCount": map[string]interface{}{"type": "integer"},
		},
	},
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	files, err := generate(sampleActivity, dir, false)
	require.NoError(t, err)
	require.Len(t, files, 4)

	workerDir := filepath.Join(dir, "jobs", "close-job-posting")
	handler, err := os.ReadFile(filepath.Join(workerDir, "handler.go"))
	require.NoError(t, err)
	src := string(handler)
	assert.Contains(t, src, "package closejobposting")
	assert.Contains(t, src, `const TaskType = "close-job-posting"`)
	assert.Contains(t, src, `ErrJobNotFound`)
	assert.Contains(t, src, `return "DATABASE_CONNECTION_FAILED", 3`)
	assert.Contains(t, src, `return "JOB_NOT_FOUND", 0`)

	models, err := os.ReadFile(filepath.Join(workerDir, "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "JobID")
	assert.Contains(t, string(models), "EmployerID")
	assert.Contains(t, string(models), "ClosedCount int")

	config, err := os.ReadFile(filepath.Join(workerDir, "config.go"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "15 * time.Second")

	_, err = generate(sampleActivity, dir, false)
	assert.Error(t, err, "existing files are kept without -force")
	_, err = generate(sampleActivity, dir, true)
	assert.NoError(t, err)
}

func TestNewWorkerData_Errors(t *testing.T) {
	_, err := newWorkerData(registry.Activity{ID: "x"})
	assert.Error(t, err)

	_, err = newWorkerData(registry.Activity{ID: "x", TaskType: "x", Timeout: "later"})
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "JobID", exportName("jobId"))
	assert.Equal(t, "SalaryRange", exportName("salary_range"))
	assert.Equal(t, "ErrPlanLimitReached", errVarName("PLAN_LIMIT_REACHED"))
	assert.Equal(t, "1500 * time.Millisecond", durationExpr(1500_000_000))
	assert.Equal(t, "auth", categoryDir("authentication"))
	assert.Equal(t, "bgv", categoryDir("bgv"))
}
