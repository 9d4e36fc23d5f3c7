// internal/workers/jobs/parse-search-filters/models.go
package parsesearchfilters

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
}

type Output struct {
	ParsedFilters  ParsedFilters     `json:"parsedFilters"`
	InvalidFilters map[string]string `json:"invalidFilters"`
}

type ParsedFilters struct {
	Keywords        string     `json:"keywords"`
	Locations       []string   `json:"locations"`
	JobTypes        []string   `json:"jobTypes"`
	SalaryRange     IntRange   `json:"salaryRange"`
	ExperienceRange IntRange   `json:"experienceRange"`
	Remote          *bool      `json:"remote,omitempty"`
	Skills          []string   `json:"skills"`
	SortBy          string     `json:"sortBy"`
	Pagination      Pagination `json:"pagination"`
}

type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}
