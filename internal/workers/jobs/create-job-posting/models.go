// internal/workers/jobs/create-job-posting/models.go
package createjobposting

type Input struct {
	EmployerID    string   `json:"employerId"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	CompanyName   string   `json:"companyName"`
	Location      string   `json:"location"`
	JobType       string   `json:"jobType"`
	Remote        bool     `json:"remote"`
	SalaryMin     int      `json:"salaryMin"`
	SalaryMax     int      `json:"salaryMax"`
	ExperienceMin int      `json:"experienceMin"`
	Skills        []string `json:"skills"`
	// RiskLevel comes from check-job-authenticity earlier in the process.
	RiskLevel string `json:"riskLevel"`
}

type Output struct {
	JobID    string `json:"jobId"`
	Status   string `json:"status"`
	Indexed  bool   `json:"indexed"`
	PostedAt string `json:"postedAt"`
}
