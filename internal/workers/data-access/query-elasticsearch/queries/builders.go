// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"job-portal-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingJobID     = errors.New("jobId is required for similar_jobs")
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Range is an inclusive numeric range; zero bounds are open.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Filters mirrors the parsedFilters object produced by parse-search-filters.
type Filters struct {
	Keywords        string   `json:"keywords"`
	Locations       []string `json:"locations"`
	JobTypes        []string `json:"jobTypes"`
	SalaryRange     Range    `json:"salaryRange"`
	ExperienceRange Range    `json:"experienceRange"`
	Remote          *bool    `json:"remote,omitempty"`
	Skills          []string `json:"skills"`
	SortBy          string   `json:"sortBy"`
}

type SearchQuery struct {
	Index     string
	QueryType models.QueryType
	Filters   Filters
	JobID     string
	From      int
	Size      int
}

// BuildBody returns the search body for the query type.
func BuildBody(q SearchQuery) (map[string]interface{}, error) {
	switch q.QueryType {
	case models.SearchTypeJobSearch:
		return buildJobSearchQuery(q.Filters), nil
	case models.SearchTypeSimilarJobs:
		if q.JobID == "" {
			return nil, ErrMissingJobID
		}
		return buildSimilarJobsQuery(q.Index, q.JobID), nil
	case models.SearchTypeCandidateSearch:
		return buildCandidateSearchQuery(q.Filters), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, q.QueryType)
	}
}

// BuildQuery wraps the body in a search request with normalized pagination.
func BuildQuery(q SearchQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	body, err := BuildBody(q)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	from, size := normalizePage(q.From, q.Size)
	return &esapi.SearchRequest{
		Index:          []string{q.Index},
		Body:           bytes.NewReader(raw),
		From:           &from,
		Size:           &size,
		TrackTotalHits: true,
	}, nil
}

func normalizePage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return from, size
}

func buildJobSearchQuery(f Filters) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{
		term("status", models.JobStatusActive),
	}

	if f.Keywords != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Keywords,
				"fields": []string{"title^3", "skills^2", "description", "companyName"},
				"type":   "best_fields",
			},
		})
	}
	if len(f.Locations) > 0 {
		filter = append(filter, terms("location", f.Locations))
	}
	if len(f.JobTypes) > 0 {
		filter = append(filter, terms("jobType", f.JobTypes))
	}
	if len(f.Skills) > 0 {
		filter = append(filter, terms("skills", f.Skills))
	}
	if f.Remote != nil {
		filter = append(filter, term("remote", *f.Remote))
	}

	// Overlap: the job's band must reach the requested minimum and start below the maximum.
	if f.SalaryRange.Min > 0 {
		filter = append(filter, rangeClause("salaryMax", "gte", f.SalaryRange.Min))
	}
	if f.SalaryRange.Max > 0 {
		filter = append(filter, rangeClause("salaryMin", "lte", f.SalaryRange.Max))
	}
	if f.ExperienceRange.Max > 0 {
		filter = append(filter, rangeClause("experienceMin", "lte", f.ExperienceRange.Max))
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	switch f.SortBy {
	case "date":
		query["sort"] = []map[string]interface{}{{"postedAt": "desc"}}
	case "salary":
		query["sort"] = []map[string]interface{}{{"salaryMax": "desc"}, {"postedAt": "desc"}}
	}
	return query
}

func buildSimilarJobsQuery(index, jobID string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"more_like_this": map[string]interface{}{
							"fields": []string{"title", "description", "skills"},
							"like": []map[string]interface{}{
								{"_index": index, "_id": jobID},
							},
							"min_term_freq":   1,
							"max_query_terms": 12,
							"min_doc_freq":    1,
							"min_word_length": 3,
						},
					},
				},
				"filter": []interface{}{term("status", models.JobStatusActive)},
				"must_not": []interface{}{
					map[string]interface{}{"ids": map[string]interface{}{"values": []string{jobID}}},
				},
			},
		},
	}
}

func buildCandidateSearchQuery(f Filters) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if f.Keywords != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Keywords,
				"fields": []string{"headline^3", "skills^2", "bio", "fullName"},
				"type":   "best_fields",
			},
		})
	}
	if len(f.Skills) > 0 {
		// Candidates rank higher the more requested skills they list.
		should := make([]interface{}, 0, len(f.Skills))
		for _, s := range f.Skills {
			should = append(should, term("skills", s))
		}
		must = append(must, map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		})
	}
	if len(f.Locations) > 0 {
		filter = append(filter, terms("location", f.Locations))
	}
	if f.ExperienceRange.Min > 0 || f.ExperienceRange.Max > 0 {
		bounds := map[string]interface{}{}
		if f.ExperienceRange.Min > 0 {
			bounds["gte"] = f.ExperienceRange.Min
		}
		if f.ExperienceRange.Max > 0 {
			bounds["lte"] = f.ExperienceRange.Max
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"experienceYears": bounds},
		})
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{"term": map[string]interface{}{field: value}}
}

func terms(field string, values []string) map[string]interface{} {
	return map[string]interface{}{"terms": map[string]interface{}{field: values}}
}

func rangeClause(field, op string, value int) map[string]interface{} {
	return map[string]interface{}{
		"range": map[string]interface{}{field: map[string]interface{}{op: value}},
	}
}
