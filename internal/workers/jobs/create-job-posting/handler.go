// internal/workers/jobs/create-job-posting/handler.go
package createjobposting

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
	"job-portal-workers/pkg/mockai"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const TaskType = "create-job-posting"

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrDatabase         = errors.New("DATABASE_CONNECTION_FAILED")
)

// Indexer makes a job searchable. *database.ElasticsearchClient satisfies it.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

type Handler struct {
	config  *Config
	db      *sql.DB
	indexer Indexer
	logger  logger.Logger
}

func NewHandler(config *Config, db *sql.DB, indexer Indexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		db:      db,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode, retries := "VALIDATION_FAILED", int32(0)
		if errors.Is(err, ErrDatabase) {
			errorCode, retries = "DATABASE_CONNECTION_FAILED", 3
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	status := models.JobStatusActive
	if input.RiskLevel == mockai.RiskHigh {
		status = models.JobStatusPendingReview
	}

	jobID := uuid.New().String()
	postedAt := time.Now().UTC()
	record := models.Job{
		ID:            jobID,
		EmployerID:    input.EmployerID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		CompanyName:   input.CompanyName,
		Location:      strings.TrimSpace(input.Location),
		JobType:       models.JobType(input.JobType),
		Remote:        input.Remote,
		SalaryMin:     input.SalaryMin,
		SalaryMax:     input.SalaryMax,
		ExperienceMin: input.ExperienceMin,
		Skills:        input.Skills,
		Status:        status,
		RiskLevel:     input.RiskLevel,
		PostedAt:      postedAt.Format(time.RFC3339),
	}

	query := `
		INSERT INTO jobs (
			id, employer_id, title, description, company_name, location, job_type, remote,
			salary_min, salary_max, experience_min, skills, status, risk_level, posted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := h.db.ExecContext(ctx, query,
		record.ID, record.EmployerID, record.Title, record.Description, record.CompanyName,
		record.Location, string(record.JobType), record.Remote, record.SalaryMin, record.SalaryMax,
		record.ExperienceMin, pq.Array(record.Skills), record.Status, record.RiskLevel, postedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert job: %v", ErrDatabase, err)
	}

	indexed := false
	if h.indexer != nil {
		if err := h.indexer.IndexDocument(ctx, h.config.IndexName, jobID, record); err != nil {
			h.logger.Warn("failed to index job, search will miss it until reindexed", map[string]interface{}{
				"jobId": jobID,
				"error": err.Error(),
			})
		} else {
			indexed = true
		}
	}

	h.logger.Info("job posting created", map[string]interface{}{
		"jobId":      jobID,
		"employerId": input.EmployerID,
		"status":     status,
	})

	return &Output{
		JobID:    jobID,
		Status:   status,
		Indexed:  indexed,
		PostedAt: record.PostedAt,
	}, nil
}

func validate(input *Input) error {
	var problems []string
	if strings.TrimSpace(input.EmployerID) == "" {
		problems = append(problems, "employerId is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(input.Location) == "" && !input.Remote {
		problems = append(problems, "location is required")
	}
	if !models.JobType(input.JobType).Valid() {
		problems = append(problems, fmt.Sprintf("jobType %q is not one of full-time, part-time, internship, contract", input.JobType))
	}
	if input.SalaryMin < 0 || input.SalaryMax < 0 {
		problems = append(problems, "salary cannot be negative")
	}
	if input.SalaryMax > 0 && input.SalaryMin > input.SalaryMax {
		problems = append(problems, "salaryMin must not exceed salaryMax")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
