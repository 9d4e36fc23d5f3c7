package queries

import (
	"encoding/json"
	"errors"
	"testing"

	"job-portal-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolClauses(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	var decoded struct {
		Query struct {
			Bool map[string]interface{} `json:"bool"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded.Query.Bool
}

func TestBuildBody_JobSearch(t *testing.T) {
	t.Run("empty filters match all active jobs", func(t *testing.T) {
		body, err := BuildBody(SearchQuery{QueryType: models.SearchTypeJobSearch})
		require.NoError(t, err)

		clauses := boolClauses(t, body)
		must := clauses["must"].([]interface{})
		require.Len(t, must, 1)
		assert.Contains(t, must[0], "match_all")
		assert.Len(t, clauses["filter"], 1)
		assert.NotContains(t, body, "sort")
	})

	t.Run("salary overlap and experience ceiling", func(t *testing.T) {
		body, err := BuildBody(SearchQuery{
			QueryType: models.SearchTypeJobSearch,
			Filters: Filters{
				SalaryRange:     Range{Min: 800000, Max: 1500000},
				ExperienceRange: Range{Max: 3},
				SortBy:          "salary",
			},
		})
		require.NoError(t, err)

		raw, _ := json.Marshal(body)
		assert.Contains(t, string(raw), `"salaryMax":{"gte":800000}`)
		assert.Contains(t, string(raw), `"salaryMin":{"lte":1500000}`)
		assert.Contains(t, string(raw), `"experienceMin":{"lte":3}`)
		assert.Contains(t, string(raw), `"sort":[{"salaryMax":"desc"},{"postedAt":"desc"}]`)
	})
}

func TestBuildBody_SimilarJobsExcludesSeed(t *testing.T) {
	body, err := BuildBody(SearchQuery{Index: "jobs", QueryType: models.SearchTypeSimilarJobs, JobID: "job-1"})
	require.NoError(t, err)

	raw, _ := json.Marshal(body)
	assert.Contains(t, string(raw), `"must_not":[{"ids":{"values":["job-1"]}}]`)
	assert.Contains(t, string(raw), `"like":[{"_id":"job-1","_index":"jobs"}]`)
}

func TestBuildBody_CandidateSearch(t *testing.T) {
	body, err := BuildBody(SearchQuery{
		QueryType: models.SearchTypeCandidateSearch,
		Filters: Filters{
			Keywords:        "platform engineer",
			Skills:          []string{"go", "terraform"},
			ExperienceRange: Range{Min: 4},
		},
	})
	require.NoError(t, err)

	clauses := boolClauses(t, body)
	assert.Len(t, clauses["must"], 2)
	raw, _ := json.Marshal(body)
	assert.Contains(t, string(raw), `"experienceYears":{"gte":4}`)
	assert.Contains(t, string(raw), `"minimum_should_match":1`)
}

func TestBuildBody_Errors(t *testing.T) {
	_, err := BuildBody(SearchQuery{QueryType: "companies_index"})
	assert.True(t, errors.Is(err, ErrUnknownQueryType))

	_, err = BuildBody(SearchQuery{QueryType: models.SearchTypeSimilarJobs})
	assert.True(t, errors.Is(err, ErrMissingJobID))

	_, err = BuildQuery(SearchQuery{QueryType: models.SearchTypeJobSearch})
	assert.True(t, errors.Is(err, ErrMissingIndex))
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		from, size         int
		wantFrom, wantSize int
	}{
		{0, 0, 0, DefaultSize},
		{-5, 10, 0, 10},
		{40, 500, 40, MaxSize},
	}
	for _, tt := range tests {
		from, size := normalizePage(tt.from, tt.size)
		assert.Equal(t, tt.wantFrom, from)
		assert.Equal(t, tt.wantSize, size)
	}
}
