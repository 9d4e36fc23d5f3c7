// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

import "job-portal-workers/internal/workers/data-access/query-elasticsearch/queries"

type Input struct {
	QueryType string          `json:"queryType"`
	Filters   queries.Filters `json:"filters"`
	// JobID is the seed document for similar_jobs.
	JobID      string     `json:"jobId,omitempty"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	QueryType string                   `json:"queryType"`
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
