package queryelasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/workers/data-access/query-elasticsearch/queries"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		JobsIndex:       "jobs",
		CandidatesIndex: "candidates",
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type capturedSearch struct {
	Path  string
	Query string
	Body  map[string]interface{}
}

// newFakeElasticsearch answers every request with status and body and records the last search.
func newFakeElasticsearch(t *testing.T, status int, body string) (*elasticsearch.Client, *capturedSearch) {
	t.Helper()
	captured := &capturedSearch{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.Query = r.URL.RawQuery
		captured.Body = nil
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, captured
}

const twoJobHits = `{
	"took": 7,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"max_score": 3.2,
		"hits": [
			{"_id": "job-1", "_score": 3.2, "_source": {"title": "Go Engineer", "location": "Pune"}},
			{"_id": "job-2", "_score": 1.1, "_source": {"id": "job-2", "title": "Backend Developer"}}
		]
	}
}`

func TestHandler_JobSearch(t *testing.T) {
	client, captured := newFakeElasticsearch(t, http.StatusOK, twoJobHits)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	remote := true
	output, err := handler.Execute(context.Background(), &Input{
		QueryType: "job_search",
		Filters: queries.Filters{
			Keywords:    "golang",
			Locations:   []string{"Pune"},
			JobTypes:    []string{"full-time"},
			SalaryRange: queries.Range{Min: 1000000},
			Remote:      &remote,
			SortBy:      "date",
		},
		Pagination: Pagination{From: 20, Size: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, "/jobs/_search", captured.Path)
	assert.Contains(t, captured.Query, "from=20")
	assert.Contains(t, captured.Query, "size=10")

	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, 3.2, output.MaxScore)
	assert.Equal(t, int64(7), output.Took)
	require.Len(t, output.Data, 2)
	assert.Equal(t, "job-1", output.Data[0]["id"])
	assert.Equal(t, 3.2, output.Data[0]["score"])
	assert.Equal(t, "job-2", output.Data[1]["id"])

	boolQuery := captured.Body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["must"], 1)
	// status + location + jobType + remote + salary
	assert.Len(t, boolQuery["filter"], 5)
	assert.NotNil(t, captured.Body["sort"])
}

func TestHandler_CandidateSearchUsesCandidatesIndex(t *testing.T) {
	client, captured := newFakeElasticsearch(t, http.StatusOK, `{"took":1,"hits":{"total":{"value":0},"max_score":null,"hits":[]}}`)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType: "candidate_search",
		Filters: queries.Filters{
			Skills:          []string{"go", "kafka"},
			ExperienceRange: queries.Range{Min: 2, Max: 6},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/candidates/_search", captured.Path)
	assert.Contains(t, captured.Query, "size=20")
	assert.Empty(t, output.Data)
	assert.Zero(t, output.MaxScore)
}

func TestHandler_SimilarJobs(t *testing.T) {
	client, captured := newFakeElasticsearch(t, http.StatusOK, twoJobHits)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{QueryType: "similar_jobs", JobID: "job-9"})
	require.NoError(t, err)
	assert.Equal(t, "/jobs/_search", captured.Path)

	raw, err := json.Marshal(captured.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"more_like_this"`))
	assert.True(t, strings.Contains(string(raw), `"_id":"job-9"`))
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		input    *Input
		wantErr  error
		wantCode string
		retries  int32
	}{
		{
			name:     "unknown query type",
			status:   http.StatusOK,
			body:     twoJobHits,
			input:    &Input{QueryType: "companies_index"},
			wantErr:  ErrValidationFailed,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "similar jobs without seed",
			status:   http.StatusOK,
			body:     twoJobHits,
			input:    &Input{QueryType: "similar_jobs"},
			wantErr:  ErrValidationFailed,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "index missing",
			status:   http.StatusNotFound,
			body:     `{"error":{"type":"index_not_found_exception","reason":"no such index [jobs]"},"status":404}`,
			input:    &Input{QueryType: "job_search"},
			wantErr:  ErrIndexNotFound,
			wantCode: "INDEX_NOT_FOUND",
		},
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     `{"error":{"type":"search_phase_execution_exception"},"status":400}`,
			input:    &Input{QueryType: "job_search"},
			wantErr:  ErrSearchQueryFailed,
			wantCode: "SEARCH_QUERY_FAILED",
			retries:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newFakeElasticsearch(t, tt.status, tt.body)
			handler := NewHandler(createTestConfig(), client, createTestLogger(t))

			_, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			code, retries := mapError(err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.retries, retries)
		})
	}
}

func TestHandler_ConnectionFailure(t *testing.T) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  []string{"http://127.0.0.1:1"},
		MaxRetries: 1,
	})
	require.NoError(t, err)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	_, err = handler.Execute(context.Background(), &Input{QueryType: "job_search"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrElasticsearchConnectionFailed))
}

func TestHandler_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = w.Write([]byte(twoJobHits))
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = handler.Execute(ctx, &Input{QueryType: "job_search"})
	assert.True(t, errors.Is(err, ErrSearchTimeout))
}

func TestHandler_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))
	_, err := handler.Execute(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrValidationFailed))
}
