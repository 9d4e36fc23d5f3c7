// internal/workers/data-access/query-elasticsearch/handler.go
package queryelasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"
	"job-portal-workers/internal/workers/data-access/query-elasticsearch/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "query-elasticsearch"
)

var (
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchQueryFailed             = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound                 = errors.New("INDEX_NOT_FOUND")
	ErrValidationFailed              = errors.New("VALIDATION_FAILED")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
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
	case errors.Is(err, ErrValidationFailed):
		return "VALIDATION_FAILED", 0
	case errors.Is(err, ErrIndexNotFound):
		return "INDEX_NOT_FOUND", 0
	case errors.Is(err, ErrSearchTimeout):
		return "SEARCH_TIMEOUT", 2
	case errors.Is(err, ErrSearchQueryFailed):
		return "SEARCH_QUERY_FAILED", 3
	case errors.Is(err, ErrElasticsearchConnectionFailed):
		return "ELASTICSEARCH_CONNECTION_FAILED", 3
	}
	return "UNKNOWN_ERROR", 0
}

// indexFor routes candidate searches to the candidates index and everything else to jobs.
func (h *Handler) indexFor(queryType models.QueryType) string {
	if queryType == models.SearchTypeCandidateSearch {
		return h.config.CandidatesIndex
	}
	return h.config.JobsIndex
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrValidationFailed)
	}

	queryType := models.QueryType(input.QueryType)
	q := queries.SearchQuery{
		Index:     h.indexFor(queryType),
		QueryType: queryType,
		Filters:   input.Filters,
		JobID:     input.JobID,
		From:      input.Pagination.From,
		Size:      input.Pagination.Size,
	}

	result, err := queries.Execute(ctx, h.client, q)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, ErrSearchTimeout
		case errors.Is(err, queries.ErrUnknownQueryType), errors.Is(err, queries.ErrMissingJobID):
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		case errors.Is(err, queries.ErrMissingIndex), errors.Is(err, queries.ErrIndexNotFound):
			return nil, fmt.Errorf("%w: %v", ErrIndexNotFound, err)
		case errors.Is(err, queries.ErrSearchFailed):
			return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrElasticsearchConnectionFailed, err)
	}

	h.logger.Debug("search executed", map[string]interface{}{
		"queryType": input.QueryType,
		"totalHits": result.TotalHits,
		"took":      result.Took,
	})

	return &Output{
		QueryType: input.QueryType,
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
