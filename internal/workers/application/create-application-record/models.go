// internal/workers/application/create-application-record/models.go
package createapplicationrecord

type Input struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`
	// ValidatedData is the output of validate-application-data.
	ValidatedData map[string]interface{} `json:"validatedData"`
	FitScore      int                    `json:"fitScore"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	EmployerID        string `json:"employerId"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
