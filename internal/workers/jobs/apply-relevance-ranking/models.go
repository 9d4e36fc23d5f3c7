// internal/workers/jobs/apply-relevance-ranking/models.go
package applyrelevanceranking

type Input struct {
	Jobs      []JobResult      `json:"jobs"`
	Candidate CandidateContext `json:"candidate"`
	MaxItems  int              `json:"maxItems,omitempty"`
}

type JobResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	CompanyName   string   `json:"companyName"`
	Location      string   `json:"location"`
	Remote        bool     `json:"remote"`
	Skills        []string `json:"skills"`
	MinExperience int      `json:"minExperience"`
	SalaryMin     int      `json:"salaryMin"`
	SalaryMax     int      `json:"salaryMax"`
	PostedAt      string   `json:"postedAt"` // RFC3339
}

type CandidateContext struct {
	Skills          []string `json:"skills"`
	Locations       []string `json:"locations"`
	ExperienceYears int      `json:"experienceYears"`
	ExpectedSalary  int      `json:"expectedSalary"`
}

type Output struct {
	RankedJobs []RankedJob `json:"rankedJobs"`
	TotalCount int         `json:"totalCount"`
}

type RankedJob struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	CompanyName     string  `json:"companyName"`
	PostedAt        string  `json:"postedAt"`
	FinalScore      float64 `json:"finalScore"`
	SkillsScore     float64 `json:"skillsScore"`
	LocationScore   float64 `json:"locationScore"`
	ExperienceScore float64 `json:"experienceScore"`
	RecencyScore    float64 `json:"recencyScore"`
	SalaryScore     float64 `json:"salaryScore"`
}
