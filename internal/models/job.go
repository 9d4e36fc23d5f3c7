// internal/models/job.go
package models

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract}

func (t JobType) Valid() bool {
	for _, v := range JobTypes {
		if v == t {
			return true
		}
	}
	return false
}

const (
	JobStatusActive        = "active"
	JobStatusPendingReview = "pending_review"
	JobStatusClosed        = "closed"
)

type Job struct {
	ID             string   `json:"id"`
	EmployerID     string   `json:"employerId"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	CompanyName    string   `json:"companyName,omitempty"`
	Location       string   `json:"location"`
	JobType        JobType  `json:"jobType"`
	Remote         bool     `json:"remote"`
	SalaryMin      int      `json:"salaryMin,omitempty"`
	SalaryMax      int      `json:"salaryMax,omitempty"`
	ExperienceMin  int      `json:"experienceMin,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Status         string   `json:"status"`
	RiskLevel      string   `json:"riskLevel,omitempty"`
	PostedAt       string   `json:"postedAt"`
	ApplicantCount int      `json:"applicantCount"`
}
