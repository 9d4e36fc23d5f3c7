// internal/workers/infrastructure/validate-subscription/models.go
package validatesubscription

type Input struct {
	EmployerID string `json:"employerId"`
}

type Output struct {
	IsValid        bool   `json:"isValid"`
	Plan           string `json:"plan"`
	ActiveJobLimit int    `json:"activeJobLimit"`
	ActiveJobs     int    `json:"activeJobs"`
	CanPostJob     bool   `json:"canPostJob"`
	// RemainingPosts is -1 for unlimited plans.
	RemainingPosts int    `json:"remainingPosts"`
	ExpiresAt      string `json:"expiresAt,omitempty"`
}
